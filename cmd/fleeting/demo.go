package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/on-the-ground/fleeting_state/log"
	"github.com/on-the-ground/fleeting_state/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Profile struct {
	Name  string
	Email string
	Age   int
}

type Preferences struct {
	Theme    string
	Language string
}

type Session struct {
	Token string
}

var (
	profileName  = store.MustField[Profile, string]("Name")
	profileEmail = store.MustField[Profile, string]("Email")
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted profile session against a fresh store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		level, err := logLevel(cmd)
		if err != nil {
			return err
		}
		withMetrics, _ := cmd.Flags().GetBool("metrics")

		logger := log.NewConsoleLogger(level)
		defer logger.Sync() //nolint:errcheck

		var reg *prometheus.Registry
		if withMetrics {
			reg = prometheus.NewRegistry()
		}
		return runDemo(cmd.Context(), cmd.OutOrStdout(), cfg, logger, reg)
	},
}

func init() {
	demoCmd.Flags().Bool("metrics", false, "Print the store metrics after the session")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context, w io.Writer, cfg store.Config, logger *zap.Logger, reg *prometheus.Registry) error {
	opts := []store.Option{store.WithLogger(logger)}
	if reg != nil {
		m, err := store.NewMetrics(reg)
		if err != nil {
			return err
		}
		opts = append(opts, store.WithMetrics(m))
	}

	ctx, end, err := store.WithStore(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer end()
	s := store.MustFromContext(ctx)

	log.InterceptAll(s.Dispatcher, logger, log.LogDebug)
	store.On(s.Dispatcher, "demo.rename", func(ctx context.Context, a store.FieldUpdate[Profile], d *store.Dispatcher) error {
		if a.Field == profileName.Name() {
			fmt.Fprintf(w, "renamed %q -> %q\n", a.Old.Name, a.State.Name)
		}
		return nil
	})
	store.Seed(s.Registry, func() Preferences {
		return Preferences{Theme: "light", Language: "en"}
	})

	profile, err := store.GetState[Profile](s.Registry)
	if err != nil {
		return err
	}
	if err := store.DispatchValue(ctx, s.Dispatcher, Profile{Name: "Alice", Age: 30}); err != nil {
		return err
	}
	if err := store.DispatchField(ctx, s.Dispatcher, profile, profileName, "Bob"); err != nil {
		return err
	}
	if err := store.DispatchField(ctx, s.Dispatcher, profile, profileEmail, "bob@example.com"); err != nil {
		return err
	}
	s.Dispatcher.Wait()
	fmt.Fprintf(w, "profile r%d: %+v\n", profile.Revision(), profile.Value())

	prefs, err := store.GetState[Preferences](s.Registry)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "preferences r%d: %+v\n", prefs.Revision(), prefs.Value())

	if _, err := store.GetState[Session](s.Registry); errors.Is(err, store.ErrCapacityExceeded) {
		fmt.Fprintf(w, "session rejected: %v\n", err)
		store.RemoveState[Preferences](s.Registry)
	} else if err != nil {
		return err
	}

	session, err := store.GetState[Session](s.Registry)
	if err != nil {
		return err
	}
	if err := store.DispatchValue(ctx, s.Dispatcher, Session{Token: s.ID}); err != nil {
		return err
	}
	s.Dispatcher.Wait()
	fmt.Fprintf(w, "session r%d: %+v\n", session.Revision(), session.Value())
	fmt.Fprintf(w, "live slots: %v\n", s.Registry.Types())

	if reg != nil {
		return printMetrics(w, reg)
	}
	return nil
}

func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			value := m.GetCounter().GetValue()
			if g := m.GetGauge(); g != nil {
				value = g.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels, value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
