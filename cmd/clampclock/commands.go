package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"github.com/urfave/cli"

	"github.com/foxxorcat/wazero-clampclock/clamp"
	"github.com/foxxorcat/wazero-clampclock/clock"
	"github.com/foxxorcat/wazero-clampclock/config"
	"github.com/foxxorcat/wazero-clampclock/trace"
	"github.com/foxxorcat/wazero-clampclock/wasip2"
	wasi_clocks "github.com/foxxorcat/wazero-clampclock/wasip2/clocks"
)

// loadConfig merges the config file with explicitly set global flags.
func loadConfig(c *cli.Context) (*config.File, error) {
	f := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if f, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if c.GlobalIsSet("resolution") {
		f.Resolution = c.GlobalFloat64("resolution")
	}
	if c.GlobalIsSet("jitter") {
		f.Jitter = c.GlobalBoolT("jitter")
	}
	if err := f.Config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "resolution %v", f.Resolution)
	}
	logrus.Debugf("clock policy: resolution=%v jitter=%v guests=%d", f.Resolution, f.Jitter, len(f.Guests))
	return f, nil
}

func nowAction(c *cli.Context) error {
	f, err := loadConfig(c)
	if err != nil {
		return err
	}
	clamp.Default().Store(f.Config)

	for i := 0; i < c.Int("count"); i++ {
		v, err := clock.Timer()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%.9f\n", v)
	}
	return nil
}

func traceAction(c *cli.Context) error {
	f, err := loadConfig(c)
	if err != nil {
		return err
	}
	src := clock.NewClock(clamp.NewClamper(f.Config), clock.Realtime{})
	opts := trace.Options{Length: c.Duration("length"), Period: c.Duration("period")}

	logrus.Debugf("recording %v trace, %v period", opts.Length, opts.Period)
	tr, err := trace.Record(context.Background(), src, opts)
	if err != nil {
		return err
	}
	return json.NewEncoder(c.App.Writer).Encode(trace.Fill(tr))
}

func runAction(c *cli.Context) error {
	if !c.Args().Present() {
		return cli.NewExitError("missing module path", 2)
	}
	path := c.Args().First()
	f, err := loadConfig(c)
	if err != nil {
		return err
	}
	wasm, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read module")
	}

	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	reg := prometheus.NewRegistry()
	h := wasip2.NewHost(
		wasi_clocks.Module("0.2.0"),
		wasip2.FromFile(f),
		wasip2.WithRegisterer(reg),
	)
	if err := h.Instantiate(ctx, r); err != nil {
		return errors.Wrap(err, "instantiate host modules")
	}

	if addr := c.String("metrics-addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logrus.WithError(err).Error("metrics server stopped")
			}
		}()
		defer srv.Close()
		logrus.Infof("serving metrics on %s", addr)
	}

	cfg := wazero.NewModuleConfig().
		WithArgs(append([]string{path}, c.Args().Tail()...)...).
		WithStdin(os.Stdin).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)
	cfg = wasi_clocks.ModuleConfig(h, cfg, c.String("name"))

	_, err = r.InstantiateWithConfig(ctx, wasm, cfg)
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code != 0 {
			return cli.NewExitError("", int(code))
		}
		return nil
	}
	return errors.Wrap(err, "run module")
}
