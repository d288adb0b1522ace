package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/doonemore/internal/config"
	"github.com/meltforce/doonemore/internal/models"
	"github.com/meltforce/doonemore/internal/share"
	"github.com/meltforce/doonemore/internal/storage"
	"github.com/meltforce/doonemore/internal/tracker"
)

const usage = `Usage: doonemore-export [-config config.yaml] <command> [flags]

Commands:
  csv      write every workout as CSV (-out file, default stdout; -tmp writes to a temp dir)
  routine  write a routine as a .doroutine file (-routine name|id, -out dir)
  link     print a routine's doonemorefitness:// share link (-routine name|id)
  import   import a routine from a link or .doroutine file (-link, -file)
`

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir, cfg.Storage.CacheMB)
	if err != nil {
		log.Error("failed to open store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	tr := tracker.New(ctx, storage.NewRepo(store, log), log)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "csv":
		err = runCSV(tr, args, log)
	case "routine":
		err = runRoutineFile(tr, args, log)
	case "link":
		err = runLink(tr, args)
	case "import":
		err = runImport(ctx, tr, args, log)
	default:
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func runCSV(tr *tracker.Tracker, args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("csv", flag.ExitOnError)
	out := fs.String("out", "", "output file (default stdout)")
	tmp := fs.Bool("tmp", false, "write workouts.csv into a fresh temp directory and print its path")
	fs.Parse(args)

	if *tmp {
		path := tr.ExportWorkoutsFile(os.TempDir())
		if path == "" {
			return fmt.Errorf("csv export produced no file")
		}
		fmt.Println(path)
		return nil
	}

	if *out == "" {
		return tr.ExportWorkoutsCSV(os.Stdout)
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	if err := tr.ExportWorkoutsCSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}
	log.Info("workouts exported", "path", *out, "count", len(tr.Workouts()))
	return nil
}

func runRoutineFile(tr *tracker.Tracker, args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("routine", flag.ExitOnError)
	ref := fs.String("routine", "", "routine name or ID (required)")
	dir := fs.String("out", ".", "directory to write the file into")
	fs.Parse(args)

	id, err := resolveRoutine(tr, *ref)
	if err != nil {
		return err
	}
	name, data, err := tr.ExportRoutineFile(id)
	if err != nil {
		return err
	}
	path := filepath.Join(*dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info("routine exported", "path", path)
	return nil
}

func runLink(tr *tracker.Tracker, args []string) error {
	fs := flag.NewFlagSet("link", flag.ExitOnError)
	ref := fs.String("routine", "", "routine name or ID (required)")
	fs.Parse(args)

	id, err := resolveRoutine(tr, *ref)
	if err != nil {
		return err
	}
	link, err := tr.RoutineLink(id)
	if err != nil {
		return err
	}
	fmt.Println(link)
	return nil
}

func runImport(ctx context.Context, tr *tracker.Tracker, args []string, log *slog.Logger) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	link := fs.String("link", "", "doonemorefitness://routine?data=... link")
	file := fs.String("file", "", "path to a .doroutine file")
	fs.Parse(args)

	var (
		r   models.Routine
		err error
	)
	switch {
	case *link != "":
		r, err = tr.ImportRoutineLink(ctx, *link)
	case *file != "":
		data, readErr := os.ReadFile(*file)
		if readErr != nil {
			return fmt.Errorf("read %s: %w", *file, readErr)
		}
		r, err = tr.ImportRoutineFile(ctx, data)
	default:
		return fmt.Errorf("one of -link or -file is required")
	}
	if err != nil {
		if msg := share.AlertFor(err).Message; msg != err.Error() {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	log.Info("routine imported", "name", r.Name, "id", r.ID, "items", len(r.Items))
	return nil
}

// resolveRoutine accepts a routine ID or a case-insensitive name.
func resolveRoutine(tr *tracker.Tracker, ref string) (uuid.UUID, error) {
	if ref == "" {
		return uuid.Nil, fmt.Errorf("-routine is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	for _, r := range tr.Routines() {
		if strings.EqualFold(r.Name, ref) {
			return r.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("no routine named %q", ref)
}
