package agent

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vagrants/blackbird-redis/collector"
)

// Version is reported as the blackbird.redis.version item.
const Version = "0.2.0"

const (
	pingKey    = "blackbird.redis.ping"
	versionKey = "blackbird.redis.version"
	dbLLDKey   = "redis.db.LLD"
)

// StatsCollector is the only view of the collector the agent sees.
type StatsCollector interface {
	Collect(spec collector.ConnectionSpec) (*collector.Result, error)
	DiscoverDatabases(spec collector.ConnectionSpec) ([]string, error)
}

var now = time.Now

// Job runs one collection cycle for one Redis instance and feeds the
// agent's queue. The agent's scheduler decides when (and whether) to retry
// a failed cycle; the job itself never does.
type Job struct {
	Hostname  string
	Spec      collector.ConnectionSpec
	Collector StatsCollector
	Queue     Queue
}

func NewJob(hostname string, spec collector.ConnectionSpec, c StatsCollector, q Queue) *Job {
	return &Job{
		Hostname:  hostname,
		Spec:      spec,
		Collector: c,
		Queue:     q,
	}
}

// BuildItems enqueues the ping and version items, runs one collection and
// enqueues a stat item per sample. A fatal collection error is returned to
// the scheduler; the ping item is enqueued regardless so the agent side can
// still alert on plugin liveness.
func (j *Job) BuildItems() error {
	j.enqueue(pingKey, "1")
	j.enqueue(versionKey, Version)

	res, err := j.Collector.Collect(j.Spec)
	if err != nil {
		log.Errorf("Collection failed for %s, err: %s", j.Spec.Addr(), err)
		return err
	}

	for _, sample := range res.Samples {
		j.enqueue(sample.Key, sample.Value())
	}
	for _, field := range res.Skipped {
		log.Debugf("field %s skipped during collection", field)
	}

	return nil
}

// BuildDiscoveryItems enqueues one low-level discovery item listing the
// dbN names found on the instance. No databases with keys is not an error;
// it just produces nothing.
func (j *Job) BuildDiscoveryItems() error {
	dbs, err := j.Collector.DiscoverDatabases(j.Spec)
	if err != nil {
		log.Errorf("Discovery failed for %s, err: %s", j.Spec.Addr(), err)
		return err
	}
	if len(dbs) == 0 {
		return nil
	}

	rows := make([]map[string]string, 0, len(dbs))
	for _, db := range dbs {
		rows = append(rows, map[string]string{"{#DB}": db})
	}

	j.Queue.EnqueueDiscovery(DiscoveryItem{
		Host:  j.Hostname,
		Key:   dbLLDKey,
		Rows:  rows,
		Clock: now().Unix(),
	})
	return nil
}

func (j *Job) enqueue(key, value string) {
	j.Queue.Enqueue(Item{
		Host:  j.Hostname,
		Key:   key,
		Value: value,
		Clock: now().Unix(),
	})
	log.Debugf("Inserted to queue %s:%s", key, value)
}
