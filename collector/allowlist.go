package collector

import (
	"fmt"
	"strconv"
)

// The fixed allow-list of INFO fields this plugin may emit, split the way
// the reporting side needs them: gauges, counters (monotonic since server
// start) and string passthroughs. Fields not listed here are dropped so
// schema drift in the backend never reaches the host agent.

var infoGaugeFields = map[string]ValueKind{
	// # Server
	"uptime_in_seconds": IntegerValue,
	"process_id":        IntegerValue,
	"tcp_port":          IntegerValue,

	// # Clients
	"connected_clients":          IntegerValue,
	"blocked_clients":            IntegerValue,
	"client_longest_output_list": IntegerValue,
	"client_biggest_input_buf":   IntegerValue,

	// # Memory
	"used_memory":             IntegerValue,
	"used_memory_rss":         IntegerValue,
	"used_memory_peak":        IntegerValue,
	"used_memory_lua":         IntegerValue,
	"mem_fragmentation_ratio": FloatValue,

	// # Persistence
	"loading":                      IntegerValue,
	"rdb_changes_since_last_save":  IntegerValue,
	"rdb_bgsave_in_progress":       IntegerValue,
	"rdb_last_save_time":           IntegerValue,
	"rdb_last_bgsave_time_sec":     IntegerValue,
	"aof_enabled":                  IntegerValue,
	"aof_rewrite_in_progress":      IntegerValue,
	"aof_rewrite_scheduled":        IntegerValue,
	"aof_last_rewrite_time_sec":    IntegerValue,
	"aof_current_rewrite_time_sec": IntegerValue,

	// # Stats
	"instantaneous_ops_per_sec": IntegerValue,
	"pubsub_channels":           IntegerValue,
	"pubsub_patterns":           IntegerValue,
	"latest_fork_usec":          IntegerValue,

	// # Replication
	"connected_slaves":   IntegerValue,
	"master_repl_offset": IntegerValue,
	"repl_backlog_size":  IntegerValue,

	// # Cluster (CLUSTER INFO reply)
	"cluster_enabled":        IntegerValue,
	"cluster_known_nodes":    IntegerValue,
	"cluster_size":           IntegerValue,
	"cluster_slots_assigned": IntegerValue,
	"cluster_slots_ok":       IntegerValue,
	"cluster_slots_pfail":    IntegerValue,
	"cluster_slots_fail":     IntegerValue,
	"cluster_current_epoch":  IntegerValue,
}

var infoCounterFields = map[string]ValueKind{
	"total_connections_received": IntegerValue,
	"total_commands_processed":   IntegerValue,
	"total_net_input_bytes":      IntegerValue,
	"total_net_output_bytes":     IntegerValue,
	"rejected_connections":       IntegerValue,

	"expired_keys":    IntegerValue,
	"evicted_keys":    IntegerValue,
	"keyspace_hits":   IntegerValue,
	"keyspace_misses": IntegerValue,

	"sync_full":        IntegerValue,
	"sync_partial_ok":  IntegerValue,
	"sync_partial_err": IntegerValue,

	"used_cpu_sys":           FloatValue,
	"used_cpu_user":          FloatValue,
	"used_cpu_sys_children":  FloatValue,
	"used_cpu_user_children": FloatValue,
}

var infoStringFields = map[string]ValueKind{
	"redis_version":          StringValue,
	"redis_mode":             StringValue,
	"os":                     StringValue,
	"role":                   StringValue,
	"maxmemory_policy":       StringValue,
	"master_link_status":     StringValue,
	"rdb_last_bgsave_status": StringValue,
	"aof_last_bgsave_status": StringValue,
	"aof_last_write_status":  StringValue,
	"cluster_state":          StringValue,
}

func lookupField(field string) (ValueKind, bool) {
	if kind, ok := infoGaugeFields[field]; ok {
		return kind, true
	}
	if kind, ok := infoCounterFields[field]; ok {
		return kind, true
	}
	kind, ok := infoStringFields[field]
	return kind, ok
}

func isCounterField(field string) bool {
	_, ok := infoCounterFields[field]
	return ok
}

// statKey builds the item key the host agent expects for a plain field,
// e.g. redis.stat[connected_clients].
func statKey(field string) string {
	return "redis.stat[" + field + "]"
}

// dbStatKey builds the item key for one db keyspace stat,
// e.g. redis.stat[db,db0,keys].
func dbStatKey(db, stat string) string {
	return fmt.Sprintf("redis.stat[db,%s,%s]", db, stat)
}

// coerceValue applies the declared kind to a raw reply value. The returned
// error means this one field is skipped; it never aborts a collection.
func coerceValue(field, key, value string, kind ValueKind) (MetricSample, error) {
	switch kind {
	case IntegerValue:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return MetricSample{}, fmt.Errorf("coercing %s=%q to integer: %w", field, value, err)
		}
		return newIntSample(field, key, v), nil

	case FloatValue:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return MetricSample{}, fmt.Errorf("coercing %s=%q to float: %w", field, value, err)
		}
		return newFloatSample(field, key, v), nil
	}

	return newStringSample(field, key, value), nil
}
