package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jwulff/memo/internal/app"
	"github.com/jwulff/memo/internal/capture"
	"github.com/jwulff/memo/internal/capture/ffmpeg"
	"github.com/jwulff/memo/internal/capture/pa"
	"github.com/jwulff/memo/internal/config"
	"github.com/jwulff/memo/internal/db"
	"github.com/jwulff/memo/internal/gateway"
	"github.com/jwulff/memo/internal/history"
	"github.com/jwulff/memo/internal/logging"
	"github.com/jwulff/memo/internal/mcpserver"
	"github.com/jwulff/memo/internal/ui"
	"github.com/jwulff/memo/internal/worker"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:          "memo",
	Short:        "Record video or audio, transcribe it, and browse past transcriptions",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+filepath.Join(config.Dir(), "config.yaml")+")")
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "memo: %v\n", err)
		os.Exit(1)
	}
}

// env holds what every command needs.
type env struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	kv      db.KV
	history *history.Store
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	kv, err := db.Open(cfg.Store)
	if err != nil {
		log.Errorw("open store", "backend", cfg.Store.Backend, "error", err)
		return nil, err
	}
	return &env{cfg: cfg, log: log, kv: kv, history: history.NewStore(kv)}, nil
}

func (e *env) Close() {
	e.kv.Close()
	e.log.Sync()
}

// newDevice builds the capture device selected by cfg.Backend.
func newDevice(cfg config.Capture) capture.Device {
	if cfg.Backend == "synthetic" {
		return &capture.Synthetic{SampleRate: cfg.SampleRate}
	}
	return capture.Router{
		Video: ffmpeg.Device{
			Binary:      cfg.FFmpeg.Binary,
			InputFormat: cfg.FFmpeg.Format,
			Front:       cfg.FFmpeg.Front,
			Rear:        cfg.FFmpeg.Rear,
			AudioFormat: cfg.FFmpeg.AudioFormat,
			AudioInput:  cfg.FFmpeg.Audio,
		},
		Audio: pa.Device{SampleRate: cfg.SampleRate},
	}
}

func runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := worker.Register(ctx, e.cfg.Worker, "", e.log); err != nil {
		e.log.Warnw("background worker not registered", "error", err)
	}

	gw, err := gateway.New(e.cfg.Gateway, "", e.log)
	if err != nil {
		return err
	}

	theme, err := ui.LoadTheme(ctx, e.kv, ui.PlatformTheme())
	if err != nil {
		e.log.Warnw("load theme", "error", err)
	}

	session := capture.NewSession(newDevice(e.cfg.Capture),
		capture.WithFlushInterval(e.cfg.Capture.FlushInterval),
		capture.WithLogger(e.log),
	)
	defer session.Reset()

	e.log.Infow("memo starting", "version", version, "capture", e.cfg.Capture.Backend,
		"gateway", e.cfg.Gateway.Mode, "store", e.cfg.Store.Backend)

	m := app.New(app.Deps{
		Session:   session,
		Gateway:   gw,
		History:   e.history,
		KV:        e.kv,
		Theme:     theme,
		ExportDir: e.cfg.ExportDir,
		Notify:    e.cfg.Notify,
		Logger:    e.log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved transcriptions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			records, err := e.history.List(cmd.Context())
			if errors.Is(err, history.ErrEmpty) {
				fmt.Fprintln(cmd.OutOrStdout(), "No transcription history yet.")
				return nil
			}
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}
			writeRecords(cmd, records)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many transcriptions (0 for all)")
	cmd.AddCommand(newHistoryShowCmd())
	return cmd
}

func writeRecords(cmd *cobra.Command, records []history.Record) {
	out := cmd.OutOrStdout()
	for _, r := range records {
		when := r.Time().Local().Format("2006-01-02 15:04:05")
		preview := strings.ReplaceAll(r.Preview, "\n", " ")
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", r.ID, when, r.MediaType, preview)
	}
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the full text of one transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			rec, err := e.history.Lookup(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Text)
			return nil
		},
	}
}

func newTranscribeCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe a recording file and save the result to history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := capture.ParseMediaKind(kindFlag)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read recording: %w", err)
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()

			gw, err := gateway.New(e.cfg.Gateway, "", e.log)
			if err != nil {
				return err
			}

			mimeType := mime.TypeByExtension(filepath.Ext(args[0]))
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			blob := capture.NewBlob(kind, mimeType, data)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			text, err := gw.Transcribe(ctx, blob)
			if err != nil {
				return errors.New(gateway.Message("", err))
			}
			rec, err := e.history.Append(ctx, text, kind)
			if err != nil {
				return err
			}
			e.log.Infow("transcribed file", "path", args[0], "kind", kind, "id", rec.ID)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", string(capture.Audio), "media kind of the file (audio or video)")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve transcription history over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.Close()
			e.log.Infow("mcp server starting", "version", version)
			return mcpserver.Serve(e.history, version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

