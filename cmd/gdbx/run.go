package main

import (
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/gdbx/console"
	"pkt.systems/gdbx/core"
	"pkt.systems/gdbx/internal/appconfig"
	"pkt.systems/gdbx/internal/eventbus"
	"pkt.systems/gdbx/internal/gdbproc"
	"pkt.systems/gdbx/internal/snapshot"
	"pkt.systems/gdbx/internal/userhome"
	"pkt.systems/pslog"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var binary string
	cmd := &cobra.Command{
		Use:   "run [-- debugger args]",
		Short: "Start a debugger session with the console front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if binary != "" {
				cfg.GDB.Binary = binary
			}
			gdbArgs := append([]string{}, cfg.GDB.Args...)
			gdbArgs = append(gdbArgs, args...)

			proc, err := gdbproc.Spawn(logger, cfg.GDB.Binary, gdbArgs...)
			if err != nil {
				return err
			}
			defer func() { _ = proc.Shutdown() }()

			reader := gdbproc.NewReader(proc, gdbproc.Options{
				Prompt:       cfg.GDB.Prompt,
				PollInterval: time.Duration(cfg.Drain.PollIntervalMS) * time.Millisecond,
				Timeout:      time.Duration(cfg.Drain.TimeoutMS) * time.Millisecond,
			})
			if err := userhome.EnsureDirOf(cfg.Console.HistoryFile); err != nil {
				logger.Warn("history directory unavailable", "err", err)
				cfg.Console.HistoryFile = ""
			}
			session := core.NewSession(proc, reader, logger)
			bus := eventbus.New(logger)
			snapshots := snapshot.New(session, cfg.Stack.Words, logger)
			ui := console.New(console.Config{
				Prompt:      cfg.GDB.Prompt,
				HistoryFile: cfg.Console.HistoryFile,
			}, session, snapshots, bus, logger)

			logger.Info("session starting", "binary", cfg.GDB.Binary, "args", gdbArgs)
			return ui.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&binary, "gdb", "", "debugger binary override")
	return cmd
}
