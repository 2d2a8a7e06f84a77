package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/ixp"
	"github.com/ItsNotGoodName/x-tilewm/internal/web"
	"github.com/ItsNotGoodName/x-tilewm/internal/wm"
	"github.com/ItsNotGoodName/x-tilewm/internal/wmfs"
	"github.com/ItsNotGoodName/x-tilewm/internal/xwm"
	"github.com/ItsNotGoodName/x-tilewm/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug   bool   `doc:"enable debug"`
	Config  string `doc:"config file" default:".x-tilewm.yaml"`
	Address string `doc:"9P address, unix!/path or tcp!host!port"`
	HTTP    string `doc:"HTTP address, disabled when empty"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			store, cfg, err := config.Load(configFilePath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if options.Address != "" {
				cfg.Address = options.Address
			}
			if options.HTTP != "" {
				cfg.HTTP = options.HTTP
			}

			xwmConfig, err := newXWMConfig(cfg)
			if err != nil {
				return err
			}

			loop := xwm.NewLoop(xwmConfig)

			fs := wmfs.New(loop, loop.Events)
			defer fs.Close()

			// Tags that get viewed are kept for the next start.
			tagC := make(chan string, 16)
			unsubscribe := loop.Events.Subscribe(func(e wm.Event) {
				if e.Name != "FocusTag" || len(e.Args) != 1 {
					return
				}
				select {
				case tagC <- e.Args[0]:
				default:
				}
			})
			defer unsubscribe()

			super := sutureext.NewSimple("root")
			sutureext.Add(super, loop)
			sutureext.Add(super, sutureext.NewServiceFunc("config.RecordTags", func(ctx context.Context) error {
				return store.RecordTags(ctx, tagC)
			}))
			sutureext.Add(super, ixp.NewService(cfg.Address, fs, int(cfg.MaxMSize)))
			if cfg.HTTP != "" {
				sutureext.Add(super, web.NewServer(cfg.HTTP, loop))
			}

			return super.Serve(ctx)
		})
	})

	cli.Root().Version = build.Current.String()

	cli.Run()
}

func newXWMConfig(cfg config.Config) (xwm.Config, error) {
	mode, ok := wm.ParseMode(cfg.ColMode)
	if !ok {
		return xwm.Config{}, fmt.Errorf("invalid colmode: %q", cfg.ColMode)
	}

	focus, err := config.ParseColor(cfg.Colors.Focus)
	if err != nil {
		return xwm.Config{}, err
	}
	normal, err := config.ParseColor(cfg.Colors.Normal)
	if err != nil {
		return xwm.Config{}, err
	}

	return xwm.Config{
		BarHeight: cfg.BarHeight,
		Border:    cfg.Border,
		Colors: xwm.Colors{
			Focus:  focus,
			Normal: normal,
		},
		WM: wm.Options{
			Border: cfg.Border,
			Mode:   mode,
			Tags:   cfg.Tags,
		},
	}, nil
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
