package collector

import (
	"reflect"
	"testing"
)

func TestExtractInfoSamples(t *testing.T) {
	for _, tst := range []struct {
		name        string
		info        string
		wantKeys    []string
		wantSkipped []string
	}{
		{
			name: "allow-list filtering",
			info: "# Server\r\nredis_version:2.8.9\r\n\r\n# Clients\r\nconnected_clients:3\r\nunknown_field:xyz\r\n",
			wantKeys: []string{
				"redis.stat[redis_version]",
				"redis.stat[connected_clients]",
			},
		},
		{
			name:     "empty reply",
			info:     "",
			wantKeys: nil,
		},
		{
			name:     "headers and blank lines only",
			info:     "# Server\r\n\r\n# Clients\r\n",
			wantKeys: nil,
		},
		{
			name:     "line without colon is skipped, not an error",
			info:     "# Server\nthis is not a stats line\nconnected_clients:1\n",
			wantKeys: []string{"redis.stat[connected_clients]"},
		},
		{
			name: "keyspace section expands per db stat",
			info: "# Keyspace\r\ndb0:keys=10,expires=2,avg_ttl=3600\r\n",
			wantKeys: []string{
				"redis.stat[db,db0,keys]",
				"redis.stat[db,db0,expires]",
				"redis.stat[db,db0,avg_ttl]",
			},
		},
		{
			name:        "coercion failure skips only that field",
			info:        "# Clients\r\nconnected_clients:abc\r\nblocked_clients:2\r\n",
			wantKeys:    []string{"redis.stat[blocked_clients]"},
			wantSkipped: []string{"connected_clients"},
		},
	} {
		t.Run(tst.name, func(t *testing.T) {
			res := &Result{}
			extractInfoSamples(tst.info, res)

			var gotKeys []string
			for _, s := range res.Samples {
				gotKeys = append(gotKeys, s.Key)
			}
			if !reflect.DeepEqual(gotKeys, tst.wantKeys) {
				t.Errorf("keys not matching, got: %v, wanted: %v", gotKeys, tst.wantKeys)
			}
			if !reflect.DeepEqual(res.Skipped, tst.wantSkipped) {
				t.Errorf("skipped not matching, got: %v, wanted: %v", res.Skipped, tst.wantSkipped)
			}
		})
	}
}

func TestExtractInfoSamplesLineEndings(t *testing.T) {
	crlf := "# Clients\r\nconnected_clients:3\r\nblocked_clients:0\r\n"
	lf := "# Clients\nconnected_clients:3\nblocked_clients:0\n"
	noTrailing := "# Clients\r\nconnected_clients:3\r\nblocked_clients:0"

	var results []*Result
	for _, info := range []string{crlf, lf, noTrailing} {
		res := &Result{}
		extractInfoSamples(info, res)
		results = append(results, res)
	}

	for i := 1; i < len(results); i++ {
		if !reflect.DeepEqual(results[0], results[i]) {
			t.Errorf("variant %d parsed differently: %#v vs %#v", i, results[0], results[i])
		}
	}
	if len(results[0].Samples) != 2 {
		t.Errorf("expected 2 samples, got %d", len(results[0].Samples))
	}
}

func TestParseDBKeyspaceString(t *testing.T) {
	tsts := []struct {
		db    string
		stats string
		want  map[string]int64
		ok    bool
	}{
		{db: "xxx", stats: "keys=1,expires=0,avg_ttl=0", ok: false},
		{db: "db", stats: "keys=1,expires=0,avg_ttl=0", ok: false},
		{db: "db0", stats: "xxx", ok: false},
		{db: "db1", stats: "keys=abcd,expires=0,avg_ttl=0", ok: false},
		{db: "db2", stats: "keys=1234=1234,expires=0,avg_ttl=0", ok: false},
		{db: "db3", stats: "keys=213,expires=xxx", ok: false},
		{db: "db3", stats: "", ok: false},

		{db: "db0", stats: "keys=1,expires=0,avg_ttl=0", ok: true,
			want: map[string]int64{"redis.stat[db,db0,keys]": 1, "redis.stat[db,db0,expires]": 0, "redis.stat[db,db0,avg_ttl]": 0}},
		{db: "db15", stats: "keys=5,expires=3", ok: true,
			want: map[string]int64{"redis.stat[db,db15,keys]": 5, "redis.stat[db,db15,expires]": 3}},
	}

	for _, tst := range tsts {
		samples, ok := parseDBKeyspaceString(tst.db, tst.stats)

		if ok != tst.ok {
			t.Errorf("failed for: db:%s stats:%s", tst.db, tst.stats)
			continue
		}
		if !ok {
			continue
		}

		got := map[string]int64{}
		for _, s := range samples {
			got[s.Key] = s.Int
		}
		if !reflect.DeepEqual(got, tst.want) {
			t.Errorf("values not matching, db:%s stats:%s got: %v", tst.db, tst.stats, got)
		}
	}
}

func TestParseDatabaseNames(t *testing.T) {
	for _, tst := range []struct {
		name string
		info string
		want []string
	}{
		{
			name: "two dbs",
			info: "# Keyspace\r\ndb0:keys=10,expires=2,avg_ttl=0\r\ndb5:keys=1,expires=0,avg_ttl=0\r\n",
			want: []string{"db0", "db5"},
		},
		{
			name: "no dbs",
			info: "# Keyspace\r\n",
			want: nil,
		},
		{
			name: "full info reply",
			info: testInfo,
			want: []string{"db0"},
		},
	} {
		t.Run(tst.name, func(t *testing.T) {
			got := parseDatabaseNames(tst.info)
			if !reflect.DeepEqual(got, tst.want) {
				t.Errorf("got: %v, wanted: %v", got, tst.want)
			}
		})
	}
}
