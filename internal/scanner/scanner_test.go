package scanner

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jakoblorz/npm-clean/internal/config"
	"github.com/jakoblorz/npm-clean/internal/detector"
	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/jakoblorz/npm-clean/internal/models"
	"github.com/jakoblorz/npm-clean/internal/plugin"
	"github.com/jakoblorz/npm-clean/internal/testutil"
	"github.com/stretchr/testify/require"
)

type plannedTarget struct {
	Path string
	Type models.TargetType
}

func planned(p *models.Project) []plannedTarget {
	var out []plannedTarget
	for _, t := range p.Targets {
		out = append(out, plannedTarget{Path: t.Path, Type: t.Type})
	}
	return out
}

func projectPaths(projects []*models.Project) []string {
	var out []string
	for _, p := range projects {
		out = append(out, p.Path)
	}
	return out
}

func scan(t *testing.T, fsys filesystem.FileSystem, cfg *config.Config, root string) []*models.Project {
	t.Helper()
	projects, err := New(fsys, cfg).Scan(context.Background(), root)
	require.NoError(t, err)
	return projects
}

func TestScan_TwoProjectScenario(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("proj-a", "next", "react").
		AddArtifact("proj-a", "node_modules", 1000).
		AddArtifact("proj-a", ".next", 200).
		AddProject("proj-b", "vue").
		AddArtifact("proj-b", "dist", 50)

	projects := scan(t, tb.Build(), config.Default(), "/ws")

	require.Equal(t, []string{"/ws/proj-a", "/ws/proj-b"}, projectPaths(projects))

	require.Equal(t, models.ProjectTypeNextJs, projects[0].Type)
	require.Equal(t, "nextjs", projects[0].DetectedBy)
	require.Equal(t, []plannedTarget{
		{"/ws/proj-a/node_modules", models.TargetNodeModules},
		{"/ws/proj-a/.next", models.TargetBuildDir},
	}, planned(projects[0]))

	require.Equal(t, models.ProjectTypeVue, projects[1].Type)
	require.Equal(t, []plannedTarget{
		{"/ws/proj-b/dist", models.TargetBuildDir},
	}, planned(projects[1]))

	for _, p := range projects {
		require.Nil(t, p.SizeInfo, "sizes are only measured with stats")
		for _, target := range p.Targets {
			require.Nil(t, target.Size)
		}
	}
}

func TestScan_Deterministic(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws")
	for _, name := range []string{"c", "a", "b/inner", "d", "e/f/g"} {
		tb.AddProject(name, "react").AddArtifact(name, "build", 10)
	}
	fsys := tb.Build()
	cfg := config.Default()
	cfg.Threads = 4

	first := scan(t, fsys, cfg, "/ws")
	for i := 0; i < 5; i++ {
		again := scan(t, fsys, cfg, "/ws")
		require.Equal(t, projectPaths(first), projectPaths(again))
		for j := range first {
			require.Equal(t, planned(first[j]), planned(again[j]))
		}
	}
	require.Equal(t, []string{"/ws/a", "/ws/c", "/ws/d", "/ws/b/inner", "/ws/e/f/g"}, projectPaths(first))
}

func TestScan_RecursiveAndRootProject(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject(".", "lodash").
		AddProject("packages/ui", "react").
		AddArtifact("packages/ui", "build", 10)
	fsys := tb.Build()

	cfg := config.Default()
	projects := scan(t, fsys, cfg, "/ws")
	require.Equal(t, []string{"/ws"}, projectPaths(projects))
	require.Equal(t, models.ProjectTypeNodeJs, projects[0].Type)

	cfg.Recursive = true
	projects = scan(t, fsys, cfg, "/ws")
	require.Equal(t, []string{"/ws", "/ws/packages/ui"}, projectPaths(projects))
}

func TestScan_NeverEntersNodeModules(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "react").
		AddProject("app/node_modules/react", "loose-envify").
		AddProject("stray/node_modules/pkg")

	cfg := config.Default()
	cfg.Recursive = true
	projects := scan(t, tb.Build(), cfg, "/ws")

	require.Equal(t, []string{"/ws/app"}, projectPaths(projects))
}

func TestScan_MaxDepth(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("one").
		AddProject("deep/two").
		AddProject("deeper/x/three")

	cfg := config.Default()
	depth := 2
	cfg.MaxDepth = &depth
	projects := scan(t, tb.Build(), cfg, "/ws")
	require.Equal(t, []string{"/ws/one", "/ws/deep/two"}, projectPaths(projects))

	depth = 0
	projects = scan(t, tb.Build(), cfg, "/ws")
	require.Empty(t, projects)
}

func TestScan_SymlinkCycleTerminates(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "react").
		AddSymlink("loop", "/ws").
		AddSymlink("nested/back", "..").
		AddSymlink("linked", "/elsewhere/lib")
	fsys := tb.Build()
	fsys.AddFile("/elsewhere/lib/package.json", []byte(`{"name":"lib"}`))

	projects := scan(t, fsys, config.Default(), "/ws")
	require.Equal(t, []string{"/ws/app", "/ws/linked"}, projectPaths(projects))
}

func TestScan_SameDirectoryThroughTwoLinks(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("real", "vue").
		AddSymlink("alias", "/ws/real")

	projects := scan(t, tb.Build(), config.Default(), "/ws")
	require.Len(t, projects, 1)
}

func TestScan_UnreadableDirectoryIsSkipped(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("ok", "react").
		AddProject("locked/inner").
		FailOn(filesystem.OpReadDir, "locked", fs.ErrPermission)

	projects := scan(t, tb.Build(), config.Default(), "/ws")
	require.Equal(t, []string{"/ws/ok"}, projectPaths(projects))
}

func TestScan_RootErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fsys *filesystem.MockFileSystem)
		root  string
	}{
		{"missing", func(*filesystem.MockFileSystem) {}, "/nope"},
		{"file", func(fsys *filesystem.MockFileSystem) { fsys.AddFile("/file", []byte("x")) }, "/file"},
		{"unlistable", func(fsys *filesystem.MockFileSystem) {
			fsys.AddDir("/ws")
			fsys.FailOn(filesystem.OpReadDir, "/ws", fs.ErrPermission)
		}, "/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := filesystem.NewMockFileSystem()
			tt.setup(fsys)

			_, err := New(fsys, config.Default()).Scan(context.Background(), tt.root)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrRootUnreadable))
		})
	}
}

func TestScan_Cancelled(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").AddProject("a").AddProject("b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	projects, err := New(tb.Build(), config.Default()).Scan(ctx, "/ws")
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, projects)
}

func TestDetermineTargets_PhaseOrderAndSwitches(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "nuxt").
		AddArtifact("app", "node_modules", 1).
		AddArtifact("app", ".nuxt", 1).
		AddArtifact("app", "dist", 1).
		AddArtifact("app", ".cache", 1).
		AddArtifact("app", "coverage", 1).
		AddFile("app/.eslintcache", 1).
		AddArtifact("app", ".turbo", 1)
	fsys := tb.Build()

	cfg := config.Default()
	cfg.CustomTargets = []string{".eslintcache", ".turbo", "missing"}
	projects := scan(t, fsys, cfg, "/ws")
	require.Equal(t, []plannedTarget{
		{"/ws/app/node_modules", models.TargetNodeModules},
		{"/ws/app/.nuxt", models.TargetBuildDir},
		{"/ws/app/dist", models.TargetBuildDir},
		{"/ws/app/.cache", models.TargetCacheDir},
		{"/ws/app/coverage", models.TargetCoverage},
		{"/ws/app/.eslintcache", models.TargetCustom},
		{"/ws/app/.turbo", models.TargetCustom},
	}, planned(projects[0]))
	require.Equal(t, "custom: .turbo", projects[0].Targets[6].Label())

	cfg.Only(models.TargetBuildDir)
	cfg.CustomTargets = nil
	projects = scan(t, fsys, cfg, "/ws")
	require.Equal(t, []plannedTarget{
		{"/ws/app/node_modules", models.TargetNodeModules},
		{"/ws/app/.nuxt", models.TargetBuildDir},
		{"/ws/app/dist", models.TargetBuildDir},
	}, planned(projects[0]), "node_modules is always planned; the cleaner gates it")
}

func TestDetermineTargets_DuplicatesAndEscapes(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "react").
		AddArtifact("app", "build", 1).
		AddArtifact("outside", "secret", 1)

	cfg := config.Default()
	cfg.CustomTargets = []string{"build", "../outside", "/ws/outside", ".", "./build"}
	projects := scan(t, tb.Build(), cfg, "/ws")

	require.Equal(t, []plannedTarget{
		{"/ws/app/build", models.TargetCustom},
	}, planned(projects[0]))
	require.Equal(t, "custom: build", projects[0].Targets[0].Label())
}

func TestDetermineTargets_CustomTakesOverBuiltinEntry(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "react").
		AddArtifact("app", "node_modules", 1).
		AddArtifact("app", "build", 1)

	cfg := config.Default()
	cfg.Only(models.TargetBuildDir)
	cfg.CustomTargets = []string{"node_modules"}
	projects := scan(t, tb.Build(), cfg, "/ws")

	require.Equal(t, []plannedTarget{
		{"/ws/app/node_modules", models.TargetCustom},
		{"/ws/app/build", models.TargetBuildDir},
	}, planned(projects[0]), "the custom entry keeps the node_modules position")
	require.True(t, cfg.Enabled(projects[0].Targets[0].Type))
}

func TestDetermineTargets_Exclusions(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "react").
		AddArtifact("app", "node_modules", 1).
		AddArtifact("app", "build", 1).
		AddArtifact("app", "coverage", 1).
		AddArtifact("app", ".turbo", 1).
		AddProject("legacy/old", "react").
		AddArtifact("legacy/old", "node_modules", 1).
		AddProject("keep", "react").
		AddArtifact("keep", "build", 1)

	cfg := config.Default()
	cfg.CustomTargets = []string{".turbo"}
	cfg.Exclude = []string{"coverage", ".turbo", "legacy/", "/ws/keep/**"}
	projects := scan(t, tb.Build(), cfg, "/ws")

	require.Equal(t, []string{"/ws/app", "/ws/keep", "/ws/legacy/old"}, projectPaths(projects))
	require.Equal(t, []plannedTarget{
		{"/ws/app/node_modules", models.TargetNodeModules},
		{"/ws/app/build", models.TargetBuildDir},
	}, planned(projects[0]), "custom targets are excluded too")
	require.Empty(t, projects[1].Targets, "absolute glob")
	require.Empty(t, projects[2].Targets, "excluded ancestor")
}

func TestDetermineTargets_Stats(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("app", "next").
		AddArtifact("app", "node_modules", 1000).
		AddArtifact("app", ".next", 300).
		AddArtifact("app", "coverage", 20).
		AddFile("app/.eslintcache", 5)

	cfg := config.Default()
	cfg.Stats = true
	cfg.CustomTargets = []string{".eslintcache"}
	projects := scan(t, tb.Build(), cfg, "/ws")

	p := projects[0]
	require.Len(t, p.Targets, 4)
	for _, target := range p.Targets {
		require.NotNil(t, target.Size)
	}
	require.Equal(t, &models.SizeInfo{
		NodeModules:  1000,
		BuildDirs:    300,
		CoverageDirs: 20,
		Custom:       5,
		Total:        1325,
	}, p.SizeInfo)
}

func TestAnalyzeProject_MalformedManifestFallsBack(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddManifest("broken", `{"name": `).
		AddArtifact("broken", "dist", 1).
		AddArtifact("broken", "node_modules", 1)

	projects := scan(t, tb.Build(), config.Default(), "/ws")

	require.Len(t, projects, 1)
	p := projects[0]
	require.Nil(t, p.PackageInfo)
	require.Equal(t, models.ProjectTypeUnknown, p.Type)
	require.Empty(t, p.DetectedBy)
	require.Equal(t, []plannedTarget{
		{"/ws/broken/node_modules", models.TargetNodeModules},
		{"/ws/broken/dist", models.TargetBuildDir},
	}, planned(p), "generic directory lists govern unclassified projects")
}

func TestAnalyzeProject_ConfigFileEvidenceWithBrokenManifest(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddManifest("app", `not json`).
		AddFile("app/angular.json", 2).
		AddArtifact("app", ".angular", 1)

	projects := scan(t, tb.Build(), config.Default(), "/ws")
	require.Equal(t, models.ProjectTypeAngular, projects[0].Type)
	require.Equal(t, []plannedTarget{
		{"/ws/app/.angular", models.TargetCacheDir},
	}, planned(projects[0]))
}

func TestScan_PluginDetector(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").
		AddProject("custom").
		AddFile("custom/example.config.js", 1).
		AddArtifact("custom", "example-dist", 1).
		AddArtifact("custom", ".example-cache", 1).
		AddArtifact("custom", "dist", 1)

	registry := plugin.NewRegistry()
	require.NoError(t, registry.Enable(nil, plugin.ExamplePluginName))
	chain := detector.NewBuiltinChain(registry.Detectors()...)

	projects, err := New(tb.Build(), config.Default(), WithChain(chain)).Scan(context.Background(), "/ws")
	require.NoError(t, err)
	require.Equal(t, plugin.ProjectTypeExample, projects[0].Type)
	require.Equal(t, []plannedTarget{
		{"/ws/custom/example-dist", models.TargetBuildDir},
		{"/ws/custom/.example-cache", models.TargetCacheDir},
	}, planned(projects[0]))
}

func TestAnalyzeProjects_DropsVanishedPaths(t *testing.T) {
	tb := testutil.NewTreeBuilder("/ws").AddProject("a")
	s := New(tb.Build(), config.Default())

	projects := s.AnalyzeProjects(context.Background(), []string{"/ws/a", "/ws/gone"}, nil)
	require.Equal(t, []string{"/ws/a"}, projectPaths(projects))
}
