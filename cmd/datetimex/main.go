package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/datetimex/internal/profile"
	"github.com/hrygo/datetimex/server"
	"github.com/hrygo/datetimex/server/timezone"
)

// version is set at build time.
var version = "dev"

const (
	flagReference = "reference"
	flagVerbose   = "verbose"
)

type app struct {
	v       *viper.Viper
	profile *profile.Profile
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: profile.NewViper()}

	root := &cobra.Command{
		Use:           "datetimex",
		Short:         "Recognize date and time expressions in text",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String(profile.KeyCulture, "en-US", "culture used when none is given")
	pf.String(profile.KeyTimezone, timezone.TimezoneUTC, "IANA timezone of the reference time")
	pf.String(profile.KeyPackPath, "", "extra YAML language pack")
	pf.Int(profile.KeyWorkers, 4, "documents recognized concurrently")
	pf.Int(profile.KeyMaxTextLength, 10000, "maximum text length in bytes")
	pf.BoolP(flagVerbose, "v", false, "debug logging")

	root.AddCommand(a.extractCmd(), a.recognizeCmd(), a.serveCmd())
	return root
}

// load merges .env, DATETIMEX_* variables and flags into the profile.
// Flags only override when set explicitly.
func (a *app) load(cmd *cobra.Command) error {
	if err := profile.LoadDotEnv(); err != nil {
		return err
	}
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "failed to bind flags")
	}

	a.profile = &profile.Profile{Version: version}
	a.profile.Load(a.v)
	if err := a.profile.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool(flagVerbose); verbose {
		level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	if a.profile.IsDev() {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	}
	a.logger = slog.New(handler)
	return nil
}

// reference resolves --reference in the configured timezone.
func (a *app) reference(cmd *cobra.Command) (time.Time, error) {
	loc, err := timezone.ParseTimezone(a.profile.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	ref, _ := cmd.Flags().GetString(flagReference)
	return timezone.ParseReference(ref, loc, nil)
}

// inputs returns the arguments joined as one text, or stdin line by line.
func inputs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	var texts []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read stdin")
	}
	return texts, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "List the date and time spans found in text",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := inputs(cmd, args)
			if err != nil {
				return err
			}
			ref, err := a.reference(cmd)
			if err != nil {
				return err
			}
			recognizer, err := server.NewRecognizer(a.profile, a.logger)
			if err != nil {
				return err
			}
			for _, text := range texts {
				ers, err := recognizer.Extract(a.profile.Culture, text, ref)
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), ers); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String(flagReference, "", "reference time, RFC 3339 or 2006-01-02 15:04:05 (default now)")
	return cmd
}

func (a *app) recognizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recognize [text...]",
		Short: "Resolve the date and time expressions in text",
		Long:  "Resolve the date and time expressions in text. Without arguments every stdin line is a document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := inputs(cmd, args)
			if err != nil {
				return err
			}
			ref, err := a.reference(cmd)
			if err != nil {
				return err
			}
			recognizer, err := server.NewRecognizer(a.profile, a.logger)
			if err != nil {
				return err
			}
			docs, err := recognizer.RecognizeBatch(cmd.Context(), a.profile.Culture, texts, ref)
			if err != nil {
				return err
			}
			for _, results := range docs {
				if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String(flagReference, "", "reference time, RFC 3339 or 2006-01-02 15:04:05 (default now)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := server.NewServer(a.profile, a.logger)
			if err != nil {
				return err
			}
			if err := s.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return s.Shutdown(shutdownCtx)
		},
	}
	f := cmd.Flags()
	f.String(profile.KeyMode, "dev", `mode of server, can be "prod" or "dev"`)
	f.String(profile.KeyAddr, "", "address of server")
	f.Int(profile.KeyPort, 8081, "port of server")
	f.Int(profile.KeyCacheSize, 1024, "cached responses, 0 disables")
	f.Duration(profile.KeyCacheTTL, 10*time.Minute, "lifetime of cached responses")
	f.Float64(profile.KeyRateLimit, 10, "requests per second per client, 0 disables")
	f.Int(profile.KeyRateBurst, 20, "request burst per client")
	f.Duration(profile.KeyRequestTimeout, 5*time.Second, "deadline of each request")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("datetimex failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
