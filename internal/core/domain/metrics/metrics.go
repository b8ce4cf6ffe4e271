package metrics

import "time"

type ScanOutcome struct {
	Due        int
	Delivered  int
	Suppressed int
	Failed     int
}

type Recorder interface {
	ObserveScan(outcome ScanOutcome, took time.Duration)
	ObserveCacheReload(size int, err error)
	ObserveChannelDelivery(channel string, err error)
	ObserveChannelSkipped(channel string, reason string)
	ObserveUserAction(action string, err error)
}

type Nop struct{}

func (Nop) ObserveScan(ScanOutcome, time.Duration) {}
func (Nop) ObserveCacheReload(int, error)          {}
func (Nop) ObserveChannelDelivery(string, error)   {}
func (Nop) ObserveChannelSkipped(string, string)   {}
func (Nop) ObserveUserAction(string, error)        {}
