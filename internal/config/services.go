package config

import "time"

type BackgroundCfg struct {
	NodeHeartbeatInterval time.Duration
	StagingSweepInterval  time.Duration
	StagingRetention      time.Duration
}

func NewBackgroundCfg() *BackgroundCfg {
	return &BackgroundCfg{
		NodeHeartbeatInterval: getSecondsEnv("NODE_HEARTBEAT_INTERVAL_SEC", 15),
		StagingSweepInterval:  getSecondsEnv("STAGING_SWEEP_INTERVAL_SEC", 300),
		StagingRetention:      getSecondsEnv("STAGING_RETENTION_SEC", 3600),
	}
}
