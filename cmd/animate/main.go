package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"animator/internal/animate"
	"animator/internal/domain"
	"animator/internal/i18n"
	"animator/internal/infra"
	"animator/internal/providers/genai"
	"animator/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		imageFlag string
		outFlag   string
	)
	flag.StringVar(&imageFlag, "image", "", "path of the image to animate")
	flag.StringVar(&outFlag, "out", "", "output directory (fallbacks to STORAGE_PATH)")
	flag.Parse()

	if strings.TrimSpace(imageFlag) == "" && flag.NArg() > 0 {
		imageFlag = flag.Arg(0)
	}
	if strings.TrimSpace(imageFlag) == "" {
		fmt.Fprintln(os.Stderr, "an image is required via -image")
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.HasCredential() {
		fmt.Fprintln(os.Stderr, i18n.T(i18n.KeySetupError))
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "animate").Logger()

	outDir := strings.TrimSpace(outFlag)
	if outDir == "" {
		outDir = cfg.StoragePath
	}
	store, err := storage.NewFileStore(outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, &logger, store, imageFlag, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "cancelled")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, animate.Message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *infra.Config, logger *infra.Logger, store *storage.FileStore, path string, out io.Writer) error {
	svc, err := genai.NewVideoService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var last string
	ctrl, err := animate.New(animate.Options{
		ID:            "cli",
		Service:       svc,
		Model:         cfg.VeoModel,
		PollInterval:  cfg.PollInterval,
		MaxPolls:      cfg.MaxPolls,
		MaxImageBytes: cfg.MaxUploadBytes,
		Logger:        logger,
		Observer: func(v domain.View) {
			if v.LoaderVisible && v.LoadingMessage != "" && v.LoadingMessage != last {
				last = v.LoadingMessage
				fmt.Fprintln(out, v.LoadingMessage)
			}
		},
	})
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFileRead, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	if err := ctrl.IngestImage(ctx, animate.ImageFile{
		Filename:    filepath.Base(path),
		ContentType: contentType(path, reader),
		Reader:      reader,
	}); err != nil {
		return err
	}

	if err := ctrl.Generate(ctx); err != nil {
		return err
	}

	saved, err := store.SaveVideo(ctx, ctrl.Video())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, saved)
	return nil
}

// contentType trusts the extension first, then sniffs the header.
func contentType(path string, r *bufio.Reader) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	head, _ := r.Peek(512)
	return http.DetectContentType(head)
}
