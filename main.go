package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vagrants/blackbird-redis/agent"
	"github.com/vagrants/blackbird-redis/collector"
)

var (
	// BuildVersion, BuildDate, BuildCommitSha are filled in by the build script
	BuildVersion   = "<<< filled in by build >>>"
	BuildDate      = "<<< filled in by build >>>"
	BuildCommitSha = "<<< filled in by build >>>"
)

func getEnv(key string, defaultVal string) string {
	if envVal, ok := os.LookupEnv(key); ok {
		return envVal
	}
	return defaultVal
}

func getEnvBool(key string) (res bool) {
	if envVal, ok := os.LookupEnv(key); ok {
		res, _ = strconv.ParseBool(envVal)
	}
	return res
}

func main() {
	var (
		redisHost        = flag.String("redis.host", getEnv("REDIS_HOST", "127.0.0.1"), "Host of the Redis instance to collect from")
		redisPort        = flag.Int("redis.port", 6379, "Port of the Redis instance to collect from")
		redisDB          = flag.Int("redis.db", 0, "Database to SELECT before collecting")
		redisUser        = flag.String("redis.user", getEnv("REDIS_USER", ""), "User for ACL-style AUTH")
		redisPwd         = flag.String("redis.password", getEnv("REDIS_PASSWORD", ""), "Password of the Redis instance to collect from")
		namespace        = flag.String("namespace", getEnv("BLACKBIRD_REDIS_NAMESPACE", "redis"), "Namespace for metrics")
		configFile       = flag.String("config", getEnv("BLACKBIRD_REDIS_CONFIG", ""), "Path to the plugin config file (overrides the redis.* flags)")
		configCommand    = flag.String("config-command", getEnv("BLACKBIRD_REDIS_CONFIG_COMMAND", "CONFIG"), "What to use for the CONFIG command")
		responseCheckKey = flag.String("response-check-key", getEnv("BLACKBIRD_REDIS_RESPONSE_CHECK_KEY", ""), "Key to time SET/GET round trips with; empty disables the check")
		timeout          = flag.String("connection-timeout", getEnv("BLACKBIRD_REDIS_CONNECTION_TIMEOUT", "10s"), "Timeout for connection to Redis instance")
		hostname         = flag.String("hostname", getEnv("BLACKBIRD_REDIS_HOSTNAME", ""), "Item host name for -once output, defaults to os.Hostname()")
		listenAddress    = flag.String("web.listen-address", getEnv("BLACKBIRD_REDIS_WEB_LISTEN_ADDRESS", ":9121"), "Address to listen on for web interface and telemetry.")
		metricPath       = flag.String("web.telemetry-path", getEnv("BLACKBIRD_REDIS_WEB_TELEMETRY_PATH", "/metrics"), "Path under which to expose metrics.")
		logFormat        = flag.String("log-format", getEnv("BLACKBIRD_REDIS_LOG_FORMAT", "txt"), "Log format, valid options are txt and json")
		isDebug          = flag.Bool("debug", getEnvBool("BLACKBIRD_REDIS_DEBUG"), "Output verbose debug information")
		runOnce          = flag.Bool("once", false, "Run one collection cycle, print the items the agent would get, and exit")
		showVersion      = flag.Bool("version", false, "Show version information and exit")
	)
	flag.Parse()

	switch *logFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}
	log.Printf("Blackbird Redis Plugin %s    build date: %s    sha1: %s    Go: %s",
		BuildVersion, BuildDate, BuildCommitSha,
		runtime.Version(),
	)
	if *isDebug {
		log.SetLevel(log.DebugLevel)
		log.Debugln("Enabling debug output")
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if *showVersion {
		return
	}

	to, err := time.ParseDuration(*timeout)
	if err != nil {
		log.Fatalf("Couldn't parse connection timeout duration, err: %s", err)
	}

	spec := collector.ConnectionSpec{
		Host:     *redisHost,
		Port:     *redisPort,
		DB:       *redisDB,
		User:     *redisUser,
		Password: *redisPwd,
		Timeout:  to,
	}

	opts := collector.Options{
		ConfigCommandName: *configCommand,
		ResponseCheckKey:  *responseCheckKey,
	}

	if *configFile != "" {
		cfg, err := loadConfig(*configFile)
		if err != nil {
			log.Fatalf("Couldn't load config file %s, err: %s", *configFile, err)
		}
		spec = cfg.spec()
		if cfg.ResponseCheckKey != "" {
			opts.ResponseCheckKey = cfg.ResponseCheckKey
		}
		if cfg.Hostname != "" {
			*hostname = cfg.Hostname
		}
	}

	if err := spec.Validate(); err != nil {
		log.Fatal(err)
	}

	coll := collector.New(opts)

	if *runOnce {
		os.Exit(runOnceCycle(coll, spec, *hostname))
	}

	promColl := collector.NewPromCollector(coll, spec, *namespace)
	prometheus.MustRegister(promColl)

	buildInfo := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blackbird_redis_build_info",
		Help: "blackbird redis plugin build_info",
	}, []string{"version", "commit_sha", "build_date", "golang_version"})
	buildInfo.WithLabelValues(BuildVersion, BuildCommitSha, BuildDate, runtime.Version()).Set(1)
	prometheus.MustRegister(buildInfo)

	http.Handle(*metricPath, promhttp.Handler())
	http.HandleFunc("/scrape", scrapeHandler(coll, *namespace))
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	})
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>
<head><title>Blackbird Redis Plugin v` + BuildVersion + `</title></head>
<body>
<h1>Blackbird Redis Plugin ` + BuildVersion + `</h1>
<p><a href='` + *metricPath + `'>Metrics</a></p>
</body>
</html>
`))
	})

	log.Infof("Providing metrics at %s%s", *listenAddress, *metricPath)
	log.Debugf("Configured redis addr: %#v", spec.Addr())
	log.Fatal(http.ListenAndServe(*listenAddress, nil))
}

// runOnceCycle does what one scheduler tick of the host agent would do and
// prints the items, for checking a target from the command line.
func runOnceCycle(coll *collector.Collector, spec collector.ConnectionSpec, hostname string) int {
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	queue := agent.NewChanQueue(1024)
	job := agent.NewJob(hostname, spec, coll, queue)

	ret := 0
	if err := job.BuildItems(); err != nil {
		ret = 1
	}
	if err := job.BuildDiscoveryItems(); err != nil {
		ret = 1
	}

	for len(queue.Items) > 0 {
		it := <-queue.Items
		fmt.Printf("%s %s %s\n", it.Host, it.Key, it.Value)
	}
	for len(queue.Discoveries) > 0 {
		it := <-queue.Discoveries
		fmt.Printf("%s %s %v\n", it.Host, it.Key, it.Rows)
	}
	return ret
}

func scrapeHandler(coll *collector.Collector, namespace string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("target")
		if target == "" {
			http.Error(w, "'target' parameter must be specified", http.StatusBadRequest)
			return
		}

		spec, err := parseTarget(target)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid 'target' parameter, err: %s", err), http.StatusBadRequest)
			return
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collector.NewPromCollector(coll, spec, namespace))

		promhttp.HandlerFor(
			registry, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError},
		).ServeHTTP(w, r)
	}
}

// parseTarget turns a "host:port" or "redis://host:port" scrape target into
// a ConnectionSpec. Credentials are deliberately not accepted here so they
// never travel in request URLs.
func parseTarget(target string) (collector.ConnectionSpec, error) {
	target = strings.TrimPrefix(target, "redis://")

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return collector.ConnectionSpec{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return collector.ConnectionSpec{}, err
	}

	spec := collector.ConnectionSpec{Host: host, Port: port}
	return spec, spec.Validate()
}
