package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vigilnet/internal/config"
	"vigilnet/internal/db"
	"vigilnet/internal/domain"
	"vigilnet/internal/engine"
	"vigilnet/internal/migrate"
	"vigilnet/internal/seed"
	"vigilnet/internal/server"
	"vigilnet/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigilnet CLI",
	Long: `Vigilnet runs the narrative layer of a tabletop superhero campaign:
missions with weighted outcomes, an in-universe cycle clock, hero-faction
reputation, feeds and messages. Players interact through the HTTP API;
this CLI is the DM's console over the same store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("VIGILNET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "dm", "actor identifier for the audit log")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(cycleCmd())
	rootCmd.AddCommand(missionCmd())
	rootCmd.AddCommand(submissionCmd())
	rootCmd.AddCommand(reputationCmd())
	rootCmd.AddCommand(factionCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(logCmd())
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			e := engine.New(&store.SQLite{DB: conn}, cfg)
			authCfg := server.AuthConfig{JWTSecret: os.Getenv("VIGILNET_JWT_SECRET")}
			if authCfg.JWTSecret == "" {
				return fmt.Errorf("VIGILNET_JWT_SECRET is required for bearer auth")
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: basePath, Auth: authCfg})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Vigilnet API on http://%s%s (OpenAPI at /openapi.json, Swagger UI at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed baseline game data into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				done, err := seed.Run(ctx, st, time.Now)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"seeded": done})
				}
				if len(done) == 0 {
					fmt.Println("nothing to seed")
					return nil
				}
				for _, d := range done {
					fmt.Println("seeded", d)
				}
				return nil
			})
		},
	}
	return cmd
}

func cycleCmd() *cobra.Command {
	cycle := &cobra.Command{
		Use:   "cycle",
		Short: "Inspect and advance the in-universe clock",
	}
	cycle.AddCommand(cycleShowCmd())
	cycle.AddCommand(cycleAdvanceCmd())
	return cycle
}

func cycleShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show cycle state and current coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				state, found, err := e.CycleState(ctx)
				if err != nil {
					return err
				}
				cycleID, err := e.CurrentCycleID(ctx)
				if err != nil {
					return err
				}
				out := map[string]any{
					"current_cycle": state.Current,
					"cycle_start":   state.Start,
					"cycle_id":      cycleID,
					"configured":    found,
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("Cycle %d (started %s)\n", state.Current, state.Start)
				fmt.Printf("Coordinate: %s\n", cycleID)
				if !found {
					fmt.Println("note: cycle state not seeded yet; run 'vigil seed'")
				}
				return nil
			})
		},
	}
	return cmd
}

func cycleAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Increment the cycle and restart its clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				state, err := e.AdvanceCycle(ctx, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				cycleID, err := e.CurrentCycleID(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"current_cycle": state.Current,
						"cycle_start":   state.Start,
						"cycle_id":      cycleID,
					})
				}
				fmt.Printf("Advanced to cycle %d (%s)\n", state.Current, cycleID)
				return nil
			})
		},
	}
	return cmd
}

func missionCmd() *cobra.Command {
	mission := &cobra.Command{
		Use:   "mission",
		Short: "Inspect missions",
	}
	mission.AddCommand(missionListCmd())
	mission.AddCommand(missionQuestionsCmd())
	return mission
}

func missionListCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible missions as one player sees them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				views, err := e.ListMissions(ctx, username)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(views)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "State", "Submitted"})
				for _, v := range views {
					tw.AppendRow(table.Row{v.ID, v.Title, v.State, v.SubmittedCycleID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "player whose view to render")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func missionQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions <mission-id>",
		Short: "Show a mission's questions and options",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				qs, err := e.MissionQuestions(ctx, args[0])
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(qs)
				}
				for _, q := range qs {
					fmt.Printf("%d. %s\n", q.Number, q.Text)
					for _, o := range q.Options {
						fmt.Printf("   [%s] %s\n", o.ID, o.Text)
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func submissionCmd() *cobra.Command {
	sub := &cobra.Command{
		Use:   "submission",
		Short: "Review and resolve mission submissions",
	}
	sub.AddCommand(submissionListCmd())
	sub.AddCommand(submissionResolveCmd())
	return sub
}

func submissionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				subs, err := e.ListSubmissions(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(subs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Hero", "Mission", "Bucket", "Override", "Resolved", "Cycle"})
				for _, s := range subs {
					resolved := "no"
					if s.Resolved {
						resolved = "yes"
					}
					tw.AppendRow(table.Row{s.ID, s.HeroName, s.MissionID, s.OutcomeBucket, s.Override, resolved, s.CycleID})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func submissionResolveCmd() *cobra.Command {
	var override string
	var resolved, unresolved bool
	cmd := &cobra.Command{
		Use:   "resolve <submission-id>",
		Short: "Override the bucket and/or mark a submission resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := engine.ResolveOptions{
				SubmissionID: args[0],
				ActorID:      viper.GetString("actor-id"),
			}
			if cmd.Flags().Changed("override") {
				bucket, ok := domain.ParseBucket(override)
				if !ok {
					return fmt.Errorf("override must be a, b, c or empty")
				}
				opts.Override = &bucket
			}
			switch {
			case resolved && unresolved:
				return fmt.Errorf("--resolved and --unresolved are mutually exclusive")
			case resolved:
				t := true
				opts.Resolved = &t
			case unresolved:
				f := false
				opts.Resolved = &f
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				s, err := e.ResolveSubmission(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrIndent(s)
			})
		},
	}
	cmd.Flags().StringVar(&override, "override", "", "outcome override: a, b, c or empty to clear")
	cmd.Flags().BoolVar(&resolved, "resolved", false, "mark resolved")
	cmd.Flags().BoolVar(&unresolved, "unresolved", false, "mark unresolved")
	return cmd
}

func reputationCmd() *cobra.Command {
	rep := &cobra.Command{
		Use:   "reputation",
		Short: "Manage the hero-faction reputation grid",
	}
	rep.AddCommand(reputationGridCmd())
	rep.AddCommand(reputationSyncCmd())
	rep.AddCommand(reputationSetCmd())
	return rep
}

func reputationGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show every hero-faction reputation entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				entries, err := e.ReputationGrid(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(entries)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Hero", "Faction", "Level"})
				for _, en := range entries {
					tw.AppendRow(table.Row{en.HeroName, en.FactionName, en.Level})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func reputationSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fill missing hero-faction pairs at neutral",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				added, err := e.SyncReputation(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]int{"added": added})
				}
				fmt.Printf("added %d entries\n", added)
				return nil
			})
		},
	}
	return cmd
}

func reputationSetCmd() *cobra.Command {
	var hero, faction, level string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set one hero-faction reputation level",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, ok := domain.ParseRepLevel(level)
			if !ok {
				return fmt.Errorf("level must be one of hostile, negative, neutral, positive, ally")
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if err := e.SetReputation(ctx, hero, faction, lvl, viper.GetString("actor-id")); err != nil {
					return err
				}
				fmt.Printf("%s / %s -> %s\n", hero, faction, lvl)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&hero, "hero", "", "hero name")
	cmd.Flags().StringVar(&faction, "faction", "", "faction name")
	cmd.Flags().StringVar(&level, "level", "", "reputation level")
	_ = cmd.MarkFlagRequired("hero")
	_ = cmd.MarkFlagRequired("faction")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func factionCmd() *cobra.Command {
	faction := &cobra.Command{
		Use:   "faction",
		Short: "Inspect factions",
	}
	faction.AddCommand(factionListCmd())
	return faction
}

func factionListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List factions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				factions, err := e.ListFactions(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(factions)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Name", "Leader", "Power"})
				for _, f := range factions {
					tw.AppendRow(table.Row{f.Name, f.Leader, f.PowerMultiplier})
				}
				tw.Render()
				return nil
			})
		},
	}
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect game config",
	}
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show loaded config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSONOrIndent(cfg)
		},
	}
	return cmd
}

func configValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate workspace config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString("workspace"))
			if err == nil {
				err = cfg.Validate()
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
	return cmd
}

func logCmd() *cobra.Command {
	log := &cobra.Command{
		Use:   "log",
		Short: "Audit event log",
	}
	log.AddCommand(logTailCmd())
	return log
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail audit events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				rows, err := st.ReadRows(ctx, store.TabEvents)
				if err != nil {
					return err
				}
				var recs []store.Record
				for _, row := range rows {
					if evtType != "" && row.Record["type"] != evtType {
						continue
					}
					recs = append(recs, row.Record)
				}
				if len(recs) > n {
					recs = recs[len(recs)-n:]
				}
				if viper.GetBool("json") {
					return printJSON(recs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"TS", "Type", "Entity", "Actor"})
				for _, rec := range recs {
					entity := rec["entity_kind"]
					if rec["entity_id"] != "" {
						entity += "/" + rec["entity_id"]
					}
					tw.AppendRow(table.Row{rec["ts"], rec["type"], entity, rec["actor_id"]})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	return cmd
}

// --- helpers ---

func withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	return fn(ctx, &store.SQLite{DB: conn})
}

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	return withStore(ctx, func(ctx context.Context, st store.Store) error {
		cfg, err := config.Load(viper.GetString("workspace"))
		if err != nil {
			return err
		}
		return fn(ctx, engine.New(st, cfg))
	})
}

func printJSONOrIndent(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
