package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hbnb_web/internal/adapters/hbnbapi"
	"hbnb_web/internal/adapters/observability"
	"hbnb_web/internal/app"
	"hbnb_web/internal/domain"
	"hbnb_web/internal/session"
	"hbnb_web/internal/shared"
	mysqlrepo "hbnb_web/internal/storage/mysql"
)

func main() {
	var (
		file     = flag.String("file", "", "JSON array of places to create")
		email    = flag.String("email", "", "log in: step one, with -password")
		password = flag.String("password", "", "password for -email")
		code     = flag.String("code", "", "log in: step two, the e-mailed code")
		logout   = flag.Bool("logout", false, "forget the stored token")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	api := hbnbapi.New(cfg.APIBase, hbnbapi.WithTimeout(cfg.APITimeout), hbnbapi.WithRateLimit(cfg.APIRPS))
	sess := session.New(session.NewFileKV(cfg.ImportSessionFile))
	accounts := app.NewAccountService(api)

	switch {
	case *logout:
		if err := accounts.Logout(ctx, sess); err != nil {
			log.Fatal().Err(err).Msg("logout failed")
		}
		log.Info().Msg("logged out")
		return
	case *email != "":
		if err := accounts.StartLogin(ctx, sess, *email, *password); err != nil {
			log.Fatal().Err(err).Msg("login failed")
		}
		log.Info().Str("email", *email).Msg("verification code sent; rerun with -code")
		return
	case *code != "":
		if err := accounts.Verify(ctx, sess, *code); err != nil {
			log.Fatal().Err(err).Msg("verification failed")
		}
		log.Info().Msg("logged in")
		return
	case *file == "":
		flag.Usage()
		os.Exit(2)
	}

	token, ok := sess.Token(ctx)
	if !ok {
		log.Fatal().Err(errNoToken).Str("session_file", cfg.ImportSessionFile).Msg("import aborted")
	}
	if claims, ok := sess.CurrentUser(ctx); ok {
		log.Info().Str("user", claims.UserID).Str("email", claims.Email).Msg("importing as")
	}

	records, err := readRecords(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("read input failed")
	}

	var journal domain.Journal
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect failed")
		}
		defer db.Close()
		j := mysqlrepo.New(db)
		if err := j.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("journal schema failed")
		}
		journal = j
	}

	wf := app.NewPlaceWorkflow(api, journal, app.ParseCompensation(cfg.Compensation), cfg.BatchLimit)
	log.Info().
		Str("base", cfg.APIBase).
		Int("workers", cfg.ImportWorkers).
		Int("places", len(records)).
		Msg("importer starting")

	workers := cfg.ImportWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	baseDir := filepath.Dir(*file)
	var (
		wg               sync.WaitGroup
		created, failed  atomic.Int32
		incomplete, auth atomic.Int32
	)

	for i, rec := range records {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(idx int, rec placeRecord) {
			defer wg.Done()
			defer sem.Release(1)

			form, closeFiles, err := rec.toForm(baseDir)
			defer closeFiles()
			if err != nil {
				failed.Add(1)
				log.Warn().Int("index", idx).Err(err).Msg("record skipped")
				return
			}
			res, err := wf.Create(ctx, token, form)
			switch {
			case err == nil:
				created.Add(1)
				log.Info().Int("index", idx).Int64("place_id", res.PlaceID).Msg("place imported")
			case errors.Is(err, domain.ErrIncomplete):
				incomplete.Add(1)
				log.Warn().Int("index", idx).Int64("place_id", res.PlaceID).Bool("compensated", res.Compensated).Err(err).Msg("place incomplete")
			case hbnbapi.IsAuthError(err):
				auth.Add(1)
				log.Error().Int("index", idx).Err(err).Msg("token rejected")
			default:
				failed.Add(1)
				log.Warn().Int("index", idx).Err(err).Msg("import failed")
			}
		}(i, rec)
	}

	wg.Wait()
	log.Info().
		Int32("created", created.Load()).
		Int32("incomplete", incomplete.Load()).
		Int32("failed", failed.Load()).
		Int32("auth_errors", auth.Load()).
		Msg("import completed")
	if auth.Load() > 0 {
		os.Exit(1)
	}
}
