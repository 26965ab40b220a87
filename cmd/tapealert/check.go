package main

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/revpol/tapealert/internal/config"
	"github.com/revpol/tapealert/internal/history"
	"github.com/revpol/tapealert/internal/notify"
	"github.com/revpol/tapealert/internal/resolver"
	"github.com/revpol/tapealert/internal/runlog"
	"github.com/revpol/tapealert/internal/tapealert"
	"github.com/revpol/tapealert/internal/version"
)

// runCheck resolves the drive's sg node, runs the diagnostic, and
// prints one TapeAlert[n] line per active flag to stdout. Collaborator
// failures (run log, mail, history) are warned about and never change
// the exit code.
func runCheck(cmd *cobra.Command, args []string) error {
	device := args[0]
	testMode, _ := cmd.Flags().GetBool("test")
	loggingFlag, _ := cmd.Flags().GetBool("logging")
	logFile, _ := cmd.Flags().GetString("logfile")
	email, _ := cmd.Flags().GetString("email")
	jobID, _ := cmd.Flags().GetString("jobid")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Flags override file settings
	if loggingFlag {
		cfg.Log.Enabled = true
	}
	if logFile != "" {
		cfg.Log.Path = logFile
	}
	if email != "" {
		cfg.Mail.Enabled = true
		cfg.Mail.To = email
		if cfg.Mail.From == "" {
			cfg.Mail.From = email
		}
	}

	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID), zap.String("device", device))

	var rl *runlog.Log
	if cfg.Log.Enabled {
		rl, err = runlog.Open(cfg.Log.Path, jobID)
		if err != nil {
			log.Warn("run log unavailable",
				zap.String("path", cfg.Log.Path), zap.Error(err))
		} else {
			defer rl.Close()
		}
	}

	rl.Start("Starting tapealert v%s", version.Version)
	rl.Printf("Drive Device: %s", device)
	defer func() {
		rl.Banner(strings.Repeat("-", len(version.Signature)))
		rl.Banner(version.Signature)
	}()

	check := &history.Check{
		ID:     runID,
		JobID:  jobID,
		Device: device,
		Status: history.StatusOK,
	}

	var text string
	if testMode {
		log.Info("test mode enabled, drive access skipped")
		rl.Printf("The 'test' flag is set. Testing mode enabled!")
		text, err = tapealert.LoadSample(cfg.Diagnostic.Sample)
		if err != nil {
			return fail(rl, log, cfg, check, err)
		}
		check.SGNode = "test"
	} else {
		if resolver.Classify(device) == resolver.ClassGeneric {
			rl.Printf("NOTE: A raw sg node was passed as the drive device")
			rl.Printf("      This may not be the correct sg node for the drive being tested")
		}

		node, err := resolver.New(topologyFor(), log).Resolve(device)
		if err != nil {
			rl.Printf("Failed to identify an sg node for drive device %s", device)
			return fail(rl, log, cfg, check, err)
		}
		rl.Printf("SG node for drive device: %s --> %s", device, node)
		check.SGNode = node

		runner := &tapealert.TapeinfoRunner{
			Path:    cfg.Diagnostic.Path,
			Timeout: cfg.Diagnostic.Timeout.Duration(),
			Log:     log,
		}
		text, err = runner.Run(context.Background(), node)
		if err != nil {
			return fail(rl, log, cfg, check, err)
		}
	}

	rep := tapealert.Extract(text)
	for _, sk := range rep.Skipped {
		log.Warn("ignoring TapeAlert flag outside 1-64",
			zap.Int("code", sk.Code), zap.String("line", sk.Line))
		rl.Printf("Ignoring out of range TapeAlert code %d: %s", sk.Code, sk.Line)
	}

	// The SD matches on 'TapeAlert[%d]' alone, so stdout carries just
	// that much per flag.
	rep.Print(os.Stdout)

	if n := len(rep.Alerts); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		rl.Printf("WARN: (%d) TapeAlert%s detected on drive device:", n, plural)
		for _, a := range rep.Alerts {
			rl.Printf("      [%d]: %s", a.Code, a.Detail)
		}
	} else {
		rl.Printf("No TapeAlerts found")
	}

	record(log, cfg, check, rep.Alerts)
	sendMail(rl, log, cfg, device, jobID, rep.Alerts)

	return nil
}

// fail records an unrecoverable check before the non-zero exit.
func fail(rl *runlog.Log, log *zap.Logger, cfg *config.Config, check *history.Check, err error) error {
	rl.Printf("ERROR: %v", err)
	rl.Printf("Exiting with a non-zero return code")
	log.Error("check failed", zap.Error(err))
	check.Status = history.StatusFailed
	check.Failure = err.Error()
	record(log, cfg, check, nil)
	return err
}

// record appends the check to the history database. A storage failure
// is logged and swallowed.
func record(log *zap.Logger, cfg *config.Config, check *history.Check, alerts []tapealert.Alert) {
	if !cfg.History.Enabled {
		return
	}
	db, err := history.New(cfg.History.Path)
	if err != nil {
		log.Warn("history database unavailable",
			zap.String("path", cfg.History.Path), zap.Error(err))
		return
	}
	defer db.Close()
	if err := db.RecordCheck(check, alerts); err != nil {
		log.Warn("recording check failed", zap.Error(err))
	}
}

// sendMail mails the alert summary when alerts were found and mail is
// configured. Delivery failures are logged and swallowed.
func sendMail(rl *runlog.Log, log *zap.Logger, cfg *config.Config, device, jobID string, alerts []tapealert.Alert) {
	if !cfg.Mail.Enabled || len(alerts) == 0 {
		return
	}
	if !notify.ValidAddress(cfg.Mail.To) {
		rl.Printf("email address '%s' does not look like a valid email, will not attempt to send", cfg.Mail.To)
		log.Warn("invalid recipient address, mail skipped", zap.String("to", cfg.Mail.To))
		return
	}

	m := &notify.Mailer{
		Server:   cfg.Mail.Server,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		To:       cfg.Mail.To,
	}
	ev := notify.Event{Device: device, JobID: jobID, Alerts: alerts}
	if err := m.Send(ev); err != nil {
		rl.Printf("Failed to send email to: %s", cfg.Mail.To)
		log.Warn("sending mail failed",
			zap.String("server", cfg.Mail.Server), zap.Error(err))
		return
	}
	rl.Printf("Successfully emailed TapeAlerts to: %s", cfg.Mail.To)
}

// topologyFor picks the device topology for the running kernel.
func topologyFor() resolver.Topology {
	if runtime.GOOS == "freebsd" {
		return &resolver.CamTopology{}
	}
	return resolver.SysfsTopology{}
}
