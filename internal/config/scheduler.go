package config

import "time"

type SchedulerConfig struct {
	ExemptSweepInterval    time.Duration `yaml:"exempt_sweep_interval"`
	AccountSweepInterval   time.Duration `yaml:"account_sweep_interval"`
	VoiceCallSweepInterval time.Duration `yaml:"voice_call_sweep_interval"`
	ChatPurgeInterval      time.Duration `yaml:"chat_purge_interval"`
}

func loadSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		ExemptSweepInterval:    getEnvAsDuration("EXEMPT_SWEEP_INTERVAL", 24*time.Hour),
		AccountSweepInterval:   getEnvAsDuration("ACCOUNT_SWEEP_INTERVAL", 24*time.Hour),
		VoiceCallSweepInterval: getEnvAsDuration("VOICE_CALL_SWEEP_INTERVAL", 6*time.Hour),
		ChatPurgeInterval:      getEnvAsDuration("CHAT_PURGE_INTERVAL", time.Hour),
	}
}
