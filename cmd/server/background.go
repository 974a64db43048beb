package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"recharge-mcp-go/internal/config"
	"recharge-mcp-go/internal/constants"
	"recharge-mcp-go/internal/monitoring"
	"recharge-mcp-go/internal/runtime"
	"recharge-mcp-go/internal/upstream"
	"recharge-mcp-go/internal/usage"
)

// startBackgroundTasks launches the periodic maintenance loops: the
// credential sweeper that drops sessions past their maximum age and
// the usage summary logger.
func startBackgroundTasks(tasks *runtime.TaskManager, cfgMgr *config.Manager, broker *upstream.Broker, tracker *usage.Tracker) {
	if err := tasks.StartPeriodic("credential-sweeper",
		"drops cached session credentials past their maximum age",
		constants.CredentialSweepInterval,
		func(ctx context.Context) error {
			return sweepCredentials(cfgMgr, broker)
		}); err != nil {
		log.WithError(err).Warn("could not start credential sweeper")
	}

	interval := cfgMgr.Current().Credential.UsageSummary
	if interval <= 0 {
		return
	}
	if err := tasks.StartPeriodic("usage-summary",
		"logs a periodic tool usage summary",
		interval,
		func(ctx context.Context) error {
			tracker.LogSummary()
			return nil
		}); err != nil {
		log.WithError(err).Warn("could not start usage summary task")
	}
}

func sweepCredentials(cfgMgr *config.Manager, broker *upstream.Broker) error {
	maxAge := cfgMgr.Current().Credential.SessionMaxAge
	if maxAge <= 0 {
		return nil
	}
	st := broker.Store()
	if !st.HasAnyEntries() {
		return nil
	}
	cleared := st.ClearOlderThan(maxAge)
	if cleared > 0 {
		monitoring.CredentialPurgesTotal.WithLabelValues("sweep").Inc()
		stats := st.Stats()
		monitoring.SetCredentialStoreSize(stats.Count, stats.EmailMappings)
		log.WithFields(log.Fields{
			"cleared": cleared,
			"max_age": maxAge,
		}).Info("swept expired session credentials")
	}
	return nil
}
