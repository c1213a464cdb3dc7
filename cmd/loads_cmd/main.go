package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Toromb/gym-app-sub000/internal"
	"github.com/Toromb/gym-app-sub000/internal/config"
	"github.com/Toromb/gym-app-sub000/internal/logging"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/fatigue"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/ledger"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/loadstate"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// catalogFile is the input of the seed action.
type catalogFile struct {
	Muscles  []catalog.Muscle  `json:"muscles"`
	Mappings []catalog.Mapping `json:"mappings"`
}

type syncOutput struct {
	Result        *fatigue.SyncResult `json:"result"`
	LedgerEntries []ledger.Entry      `json:"ledgerEntries"`
}

// run musclestats maintenance actions against the configured database
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	action := flag.String("action", "report", "action [migrate | seed | validate-mappings | sync | report | rebuild | state]")
	studentID := flag.String("student", "", "student id (report, rebuild, state)")
	muscleID := flag.String("muscle", "", "muscle id (state)")
	date := flag.String("date", "", "report date YYYY-MM-DD, today when empty (report, rebuild)")
	inputPath := flag.String("file", "", "JSON input: a session for sync, the muscle catalog for seed")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %s\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.LogsPath,
		LogToStdout:   cfg.LogToStdout,
		LogLevel:      cfg.LogLevel,
		LogFormatJSON: cfg.LogFormatJSON,
		Environment:   cfg.Environment,
		Console:       os.Stderr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:        cfg,
		DBUser:        os.Getenv("MUSCLESTATS_DB_USER"),
		DBPassword:    os.Getenv("MUSCLESTATS_DB_PASS"),
		RedisPassword: os.Getenv("MUSCLESTATS_REDIS_PASS"),
		ServiceName:   "loads_cmd",
		Migrate:       *action == "migrate" || *action == "seed",
	})
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	res, err := run(ctx, server, *action, *studentID, *muscleID, *date, *inputPath)
	server.GracefulShutdown()
	if err != nil {
		log.Errorf("%s failed: %s", *action, err)
		os.Exit(1)
	}

	if res != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Errorf("encode result: %s", err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, server *internal.Server, action, studentID, muscleID, date, inputPath string) (any, error) {
	var target time.Time
	if date != "" {
		d, err := fatigue.ParseDay(date)
		if err != nil {
			return nil, err
		}
		target = d
	}

	switch action {
	case "migrate":
		log.Infoln("schema applied")
		return nil, nil

	case "seed":
		var in catalogFile
		if err := readJSON(inputPath, &in); err != nil {
			return nil, err
		}
		var errs error
		for _, m := range in.Muscles {
			errs = multierr.Append(errs, server.CatalogRepo.UpsertMuscle(ctx, m))
		}
		for _, m := range in.Mappings {
			errs = multierr.Append(errs, server.CatalogRepo.UpsertMapping(ctx, m))
		}
		if errs != nil {
			return nil, errs
		}
		server.Catalog.Invalidate()
		log.Infof("seeded %d muscles and %d mappings", len(in.Muscles), len(in.Mappings))
		return validateMappings(ctx, server)

	case "validate-mappings":
		return validateMappings(ctx, server)

	case "sync":
		var session fatigue.CompletedSessionRecord
		if err := readJSON(inputPath, &session); err != nil {
			return nil, err
		}
		res, err := server.Engine.SyncSessionLoad(ctx, session)
		if err != nil {
			return nil, err
		}
		entries, err := server.Ledger.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		return syncOutput{Result: res, LedgerEntries: entries}, nil

	case "report":
		if studentID == "" {
			return nil, fatigue.ErrInvalidStudent
		}
		return server.Engine.GetLoadsForStudent(ctx, studentID, target)

	case "rebuild":
		if studentID == "" {
			return nil, fatigue.ErrInvalidStudent
		}
		return server.Engine.RebuildStudent(ctx, studentID, target)

	case "state":
		if studentID == "" || muscleID == "" {
			return nil, fmt.Errorf("state needs -student and -muscle")
		}
		state, err := server.States.Get(ctx, studentID, muscleID)
		if errors.Is(err, loadstate.ErrStateNotFound) {
			log.Infof("no stored snapshot for student [%s], muscle [%s]", studentID, muscleID)
			return nil, nil
		}
		return state, err

	default:
		return nil, fmt.Errorf("unknown action [%s]", action)
	}
}

func validateMappings(ctx context.Context, server *internal.Server) ([]catalog.MappingIssue, error) {
	mappings, err := server.CatalogRepo.AllMappings(ctx)
	if err != nil {
		return nil, err
	}
	issues := catalog.ValidateMappings(mappings)
	if len(issues) == 0 {
		log.Infof("%d exercise mappings are consistent", len(mappings))
		return []catalog.MappingIssue{}, nil
	}
	log.Warnf("%d exercise mapping issues found", len(issues))
	return issues, nil
}

func readJSON(path string, dst any) error {
	if path == "" {
		return fmt.Errorf("no input file, use -file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode input [%s]: %w", path, err)
	}
	return nil
}
