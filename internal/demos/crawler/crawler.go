// Package crawler is the mode-controlled demo. It loads its sprites while in
// Loading, builds the world on leaving Loading, and toggles between Running
// and Paused on the pause key, showing an overlay while paused.
package crawler

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/assets"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

func init() {
	registry.Register("crawler", func() registry.Demo { return &Demo{} })
}

// Demo implements registry.Demo. One instance drives one world.
type Demo struct {
	settings config.CrawlerConfig
	batch    *assets.Batch
	watcher  *assets.Watcher

	cameras  *ecs.Filter0
	overlays *ecs.Filter0
	loading  *ecs.Filter1[engine.Text]
}

func (d *Demo) ID() string    { return "crawler" }
func (d *Demo) Title() string { return "Dungeon Crawler" }

func (d *Demo) Description() string {
	return "loading, running and paused modes with an overlay and a movable camera"
}

// Build opens the asset server and registers the mode-gated systems.
func (d *Demo) Build(s *schedule.Scheduler, env registry.Env) error {
	d.settings = env.Settings
	w := s.World()

	server, err := openAssets(env.Settings.Assets, s.Logger())
	if err != nil {
		return err
	}
	w.SetAssets(server)

	if env.Settings.Assets.HotReload {
		watcher, err := server.Watch()
		if err != nil {
			return fmt.Errorf("crawler: cannot watch %s: %w", server.Root(), err)
		}
		if watcher != nil {
			d.watcher = watcher
			w.AddCloser(watcher)
		} else {
			s.Logger().Warn("hot reload needs an on-disk asset root", "root", env.Settings.Assets.Root)
		}
	}

	d.cameras = ecs.NewFilter0(w.ECS()).With(ecs.C[engine.Camera](), ecs.C[CameraRig]())
	d.overlays = ecs.NewFilter0(w.ECS()).With(ecs.C[PausedOverlay]())
	d.loading = ecs.NewFilter1[engine.Text](w.ECS()).With(ecs.C[LoadingText]())

	s.AddStartup(schedule.Named("spawn_camera", d.spawnCamera))
	s.AddStartup(schedule.Named("spawn_loading_text", spawnLoadingText))

	s.OnEnter(mode.Loading, "load_assets", d.loadAssets)
	s.OnExit(mode.Loading, "setup_world", d.setupWorld)
	s.OnEnter(mode.Paused, "spawn_paused_overlay", d.spawnOverlay)
	s.OnExit(mode.Paused, "despawn_paused_overlay", d.despawnOverlay)

	s.AddGroup("loading", mode.In(mode.Loading), schedule.Named("poll_assets", d.pollAssets))
	s.AddSystems("hot_reload", schedule.Named("reload_sprites", d.reloadSprites))
	s.AddGroup("pause", mode.In(mode.Running, mode.Paused), schedule.Named("toggle_pause", TogglePause))
	s.AddSystems("exit", schedule.Named("exit_on_escape", demos.ExitOnEscape))
	s.AddGroup("gameplay", mode.In(mode.Running),
		schedule.Named("move_camera", d.moveCamera),
		schedule.Named("spin", spin),
	)
	return nil
}

func openAssets(cfg config.AssetsConfig, logger *log.Logger) (*assets.Server, error) {
	if cfg.Root == "" {
		return assets.NewServer(assets.Default(), cfg.Workers, assets.WithLogger(logger))
	}
	return assets.NewDirServer(cfg.Root, cfg.Workers, assets.WithLogger(logger))
}
