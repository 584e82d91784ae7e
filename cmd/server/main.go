package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/medreza/honcho-voucher-service/pkg/config"
	"github.com/medreza/honcho-voucher-service/pkg/middleware"
	"github.com/medreza/honcho-voucher-service/pkg/repository"
	"github.com/medreza/honcho-voucher-service/pkg/server"
	"github.com/medreza/honcho-voucher-service/pkg/service"
	"github.com/sirupsen/logrus"
)

// appContext is bound into every command's Run method.
type appContext struct {
	ctx context.Context
	cfg config.Config
}

var cli struct {
	Serve  serveCmd  `cmd:"" default:"1" help:"Run the HTTP service (default)."`
	Import importCmd `cmd:"" help:"Bulk load vouchers from a code,start_date,duration file."`
}

type serveCmd struct{}

func (c *serveCmd) Run(app *appContext) error {
	svc, closeRepo, err := openService(app)
	if err != nil {
		return err
	}
	defer closeRepo()

	router := server.NewRouter(app.cfg, svc)
	return server.Run(app.ctx, app.cfg.Server, router)
}

type importCmd struct {
	File string `arg:"" type:"existingfile" help:"File to import."`
}

func (c *importCmd) Run(app *appContext) error {
	svc, closeRepo, err := openService(app)
	if err != nil {
		return err
	}
	defer closeRepo()

	f, err := os.Open(c.File)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", c.File)
	}
	defer f.Close()

	summary, err := svc.BulkReplace(app.ctx, f)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"file":    c.File,
		"applied": summary.Applied,
		"skipped": summary.Skipped,
	}).Info("Import finished")
	return nil
}

func openService(app *appContext) (*service.VoucherService, func(), error) {
	loc, err := app.cfg.Voucher.Location()
	if err != nil {
		return nil, nil, err
	}

	repo, err := repository.Open(app.ctx, app.cfg.DB)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize database")
	}
	logrus.WithField("driver", app.cfg.DB.Driver).Info("Database initialized")

	closeRepo := func() {
		if err := repo.Close(context.Background()); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}
	return service.NewVoucherService(repo, service.WithLocation(loc)), closeRepo, nil
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("voucher-service"),
		kong.Description("Stores voucher codes and reports whether they are valid."),
	)

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	middleware.SetupLogger(cfg.Log)

	err = kctx.Run(&appContext{ctx: context.Background(), cfg: cfg})
	kctx.FatalIfErrorf(err)
}
