package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ulilazmi100/micro-skill/internal/dispatch"
	"github.com/ulilazmi100/micro-skill/internal/lessons"
	"github.com/ulilazmi100/micro-skill/internal/llm"
	"github.com/ulilazmi100/micro-skill/internal/logging"
	"github.com/ulilazmi100/micro-skill/internal/store"
)

const (
	keyLogMode = "LOG_MODE"
	keyPort    = "LOCAL_API_PORT"

	defaultPort = 5174
)

// app holds the dependencies shared by the generation commands.
type app struct {
	v       *viper.Viper
	cfg     llm.Config
	log     *logging.Logger
	store   *store.Store
	service *lessons.Service
}

// loadViper reads the optional --config file and binds the environment.
func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(keyLogMode, "prod")
	v.SetDefault(keyPort, defaultPort)

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if mode, _ := cmd.Flags().GetString("log-mode"); mode != "" {
		v.Set(keyLogMode, mode)
	}
	return v, nil
}

// newApp opens the store, builds the provider registry, and wires the
// lesson service. Callers must call close.
func newApp(cmd *cobra.Command, svcCfg lessons.Config) (*app, error) {
	v, err := loadViper(cmd)
	if err != nil {
		return nil, err
	}

	cfg := llm.LoadConfig(v)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(v.GetString(keyLogMode))
	if err != nil {
		return nil, err
	}

	a := &app{v: v, cfg: cfg, log: log}
	registryOpts := []llm.Option{llm.WithLogger(log)}

	if noEvents, _ := cmd.Flags().GetBool("no-events"); !noEvents && !cfg.DemoMode {
		st, err := openStore(cmd)
		if err != nil {
			// The event log is optional; generation still works without it.
			log.Warn("event log unavailable", "error", err)
		} else {
			a.store = st
			registryOpts = append(registryOpts, llm.WithEventRepo(st.EventRepo()))
		}
	}

	d := dispatch.New(cfg,
		dispatch.WithLogger(log),
		dispatch.WithProviderOptions(registryOpts...),
	)
	a.service = lessons.NewService(d, svcCfg)

	if cfg.DemoMode {
		fmt.Fprintln(cmd.ErrOrStderr(), "DEMO_MODE is on: serving the canned lesson set, no provider is called.")
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	a.log.Sync()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// profileFlags registers the job context flags shared by the generation
// commands.
func profileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("job-title", "", "Job title")
	f.String("skill-level", lessons.DefaultSkillLevel, "Your skill level")
	f.String("strengths", "", "Your strengths")
	f.String("platform", "", "Gig platform (e.g. Upwork, Fiverr)")
	f.String("job-desc", "", "Job description (use @file to read it from a file, - for stdin)")
	f.String("provider", "", "Provider: "+strings.Join(providerNames(), ", ")+" (default from DEFAULT_PROVIDER)")
}

func profileFromFlags(cmd *cobra.Command) (lessons.Profile, error) {
	f := cmd.Flags()
	p := lessons.Profile{}
	p.JobTitle, _ = f.GetString("job-title")
	p.SkillLevel, _ = f.GetString("skill-level")
	p.Strengths, _ = f.GetString("strengths")
	p.Platform, _ = f.GetString("platform")

	desc, _ := f.GetString("job-desc")
	desc, err := readArg(cmd, desc)
	if err != nil {
		return p, fmt.Errorf("read job description: %w", err)
	}
	p.JobDesc = desc
	return p, nil
}

// readArg expands "@path" to the file contents and "-" to stdin.
func readArg(cmd *cobra.Command, s string) (string, error) {
	switch {
	case s == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return strings.TrimSpace(string(b)), err
	case strings.HasPrefix(s, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(s, "@"))
		return strings.TrimSpace(string(b)), err
	default:
		return s, nil
	}
}

func providerNames() []string {
	var names []string
	for _, n := range llm.Names() {
		names = append(names, string(n))
	}
	return names
}
