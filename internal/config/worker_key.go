package config

type WorkerKeyStruct struct {
	AnalyticsRefreshQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AnalyticsRefreshQueue: "analytics_refresh_queue",
}
