package collector

import (
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

// Collector gathers one snapshot of Redis statistics per Collect call. It
// holds no per-target state, so a single Collector may be shared across
// goroutines polling different instances - each call opens and closes its
// own connection.
type Collector struct {
	options Options
}

type Options struct {
	// ConfigCommandName is what to send instead of CONFIG, for servers
	// that rename it.
	ConfigCommandName string

	// ResponseCheckKey, when set, makes each collection time a SET and a
	// GET of that key and emit redis.stat[set_response] /
	// redis.stat[get_response] seconds.
	ResponseCheckKey string
}

// New returns a collector with the given options.
func New(opts Options) *Collector {
	log.Debugf("New() options: %#v", opts)

	if opts.ConfigCommandName == "" {
		opts.ConfigCommandName = "CONFIG"
	}
	return &Collector{options: opts}
}

// Collect connects to the instance described by spec, issues the
// introspection commands and returns the normalized samples. On a fatal
// error no partial samples are returned; per-field coercion failures only
// land in Result.Skipped. The connection is closed before returning, always.
func (c *Collector) Collect(spec ConnectionSpec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	conn, err := c.connect(spec)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	info, err := redis.String(doRedisCmd(conn, "INFO"))
	if err != nil {
		log.Errorf("Redis INFO err: %s", err)
		return nil, &CollectError{Kind: classifyCmdErr(err), Err: err}
	}

	res := &Result{}
	extractInfoSamples(info, res)

	c.extractConfigSamples(conn, res)

	if strings.Contains(info, "cluster_enabled:1") {
		c.extractClusterSamples(conn, res)
	}

	if c.options.ResponseCheckKey != "" {
		c.extractResponseCheckSamples(conn, res)
	}

	return res, nil
}

// DiscoverDatabases returns the dbN names the instance currently holds keys
// in, for the host agent's low-level discovery.
func (c *Collector) DiscoverDatabases(spec ConnectionSpec) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	conn, err := c.connect(spec)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	info, err := redis.String(doRedisCmd(conn, "INFO", "keyspace"))
	if err != nil {
		log.Errorf("Redis INFO keyspace err: %s", err)
		return nil, &CollectError{Kind: classifyCmdErr(err), Err: err}
	}

	return parseDatabaseNames(info), nil
}

func (c *Collector) connect(spec ConnectionSpec) (redis.Conn, error) {
	startTime := time.Now()
	conn, err := connectToRedis(spec)
	if err != nil {
		log.Errorf("Couldn't connect to redis instance %s", spec.Addr())
		log.Debugf("connectToRedis( %s ) err: %s", spec.Addr(), err)
		return nil, &CollectError{Kind: ConnectionError, Err: err}
	}
	log.Debugf("connected to: %s", spec.Addr())
	log.Debugf("connecting took %f seconds", time.Since(startTime).Seconds())

	if err := setupConnection(conn, spec); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// extractConfigSamples collects the two config values the original plugin
// reported via CONFIG GET. CONFIG being disabled or renamed away is not
// fatal.
func (c *Collector) extractConfigSamples(conn redis.Conn, res *Result) {
	for _, param := range []string{"maxmemory", "maxclients"} {
		values, err := redis.Strings(doRedisCmd(conn, c.options.ConfigCommandName, "GET", param))
		if err != nil {
			log.Debugf("Redis CONFIG GET %s err: %s", param, err)
			continue
		}
		if len(values) != 2 {
			log.Debugf("Redis CONFIG GET %s unexpected reply: %#v", param, values)
			continue
		}

		sample, err := coerceValue(param, statKey(param), values[1], IntegerValue)
		if err != nil {
			log.Debugf("dropping field, %s", err)
			res.Skipped = append(res.Skipped, param)
			continue
		}
		res.Samples = append(res.Samples, sample)
	}
}

// extractClusterSamples adds the CLUSTER INFO fields; the reply has the
// same key:value line format as INFO.
func (c *Collector) extractClusterSamples(conn redis.Conn, res *Result) {
	clusterInfo, err := redis.String(doRedisCmd(conn, "CLUSTER", "INFO"))
	if err != nil {
		log.Errorf("Redis CLUSTER INFO err: %s", err)
		return
	}
	extractInfoSamples(clusterInfo, res)
}

func (c *Collector) extractResponseCheckSamples(conn redis.Conn, res *Result) {
	checkValue := time.Now().Format("20060102150405")

	startTime := time.Now()
	if _, err := doRedisCmd(conn, "SET", c.options.ResponseCheckKey, checkValue); err != nil {
		log.Errorf("Couldn't SET response check key, err: %s", err)
		return
	}
	res.Samples = append(res.Samples,
		newFloatSample("set_response", statKey("set_response"), time.Since(startTime).Seconds()))

	startTime = time.Now()
	if _, err := doRedisCmd(conn, "GET", c.options.ResponseCheckKey); err != nil {
		log.Errorf("Couldn't GET response check key, err: %s", err)
		return
	}
	res.Samples = append(res.Samples,
		newFloatSample("get_response", statKey("get_response"), time.Since(startTime).Seconds()))
}
