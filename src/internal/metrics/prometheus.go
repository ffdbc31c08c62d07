package metrics

import (
	"sort"
	"strconv"
	"strings"
)

const namespace = "tasktracker_"

// FormatPrometheus renders a snapshot in the Prometheus text exposition format
func FormatPrometheus(snapshot MetricsSnapshot) string {
	var b strings.Builder

	writeMetric(&b, "info", "gauge", "Application information",
		`{version="`+snapshot.Version+`",go_version="`+snapshot.GoVersion+`"}`, "1")
	writeMetric(&b, "uptime_seconds", "counter", "Total uptime in seconds", "",
		strconv.FormatFloat(snapshot.UptimeSecs, 'f', 0, 64))

	for _, name := range sortedKeys(snapshot.Counters) {
		writeMetric(&b, SanitizeMetricName(name), "counter", "Counter metric", "",
			strconv.FormatInt(snapshot.Counters[name], 10))
	}

	for _, name := range sortedKeys(snapshot.Gauges) {
		writeMetric(&b, SanitizeMetricName(name), "gauge", "Gauge metric", "",
			strconv.FormatFloat(snapshot.Gauges[name], 'f', -1, 64))
	}

	for _, name := range sortedKeys(snapshot.Histograms) {
		hist := snapshot.Histograms[name]
		base := namespace + SanitizeMetricName(name)
		b.WriteString("# HELP " + base + " Histogram metric\n")
		b.WriteString("# TYPE " + base + " histogram\n")
		b.WriteString(base + "_count " + strconv.FormatInt(hist.Count, 10) + "\n")
		b.WriteString(base + "_sum " + strconv.FormatFloat(hist.Sum, 'f', -1, 64) + "\n")
		b.WriteString(base + `_bucket{le="+Inf"} ` + strconv.FormatInt(hist.Count, 10) + "\n\n")
	}

	writeMetric(&b, "system_goroutines", "gauge", "Number of goroutines", "",
		strconv.Itoa(snapshot.System.GoRoutines))
	writeMetric(&b, "system_memory_used", "gauge", "Memory used in bytes", "",
		strconv.FormatUint(snapshot.System.MemoryUsed, 10))

	tables := []struct {
		name  string
		count int64
	}{
		{"users", snapshot.Database.Users},
		{"tasks", snapshot.Database.Tasks},
		{"comments", snapshot.Database.Comments},
		{"tags", snapshot.Database.Tags},
		{"task_tags", snapshot.Database.TaskTags},
	}
	for _, t := range tables {
		writeMetric(&b, "database_"+t.name, "gauge", "Rows in "+t.name, "",
			strconv.FormatInt(t.count, 10))
	}

	return b.String()
}

func writeMetric(b *strings.Builder, name, kind, help, labels, value string) {
	full := namespace + name
	b.WriteString("# HELP " + full + " " + help + "\n")
	b.WriteString("# TYPE " + full + " " + kind + "\n")
	b.WriteString(full + labels + " " + value + "\n\n")
}

// SanitizeMetricName converts metric names to Prometheus format
func SanitizeMetricName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') {
			b.WriteRune(char)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
