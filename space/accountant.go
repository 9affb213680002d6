// Package space computes and categorizes the on-disk footprint of an
// instance and its logs. Read-only: nothing here mutates the filesystem.
package space

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Filter decides whether a file name counts toward a size sum.
type Filter func(name string) bool

// All admits every file.
func All(string) bool { return true }

// Usage partitions an instance's footprint into byte-count buckets.
type Usage struct {
	Primary           int64 `json:"primary"`
	IndexSchema       int64 `json:"index_schema"`
	TemporalNodeData  int64 `json:"temporal_node_data"`
	TemporalNodeIndex int64 `json:"temporal_node_index"`
	TemporalRelData   int64 `json:"temporal_relationship_data"`
	TemporalRelIndex  int64 `json:"temporal_relationship_index"`
	Other             int64 `json:"other"`
}

// Total sums all buckets.
func (u Usage) Total() int64 {
	return u.Primary + u.IndexSchema + u.TemporalNodeData + u.TemporalNodeIndex +
		u.TemporalRelData + u.TemporalRelIndex + u.Other
}

// Report combines classified instance usage with log sizes.
type Report struct {
	Instance      string `json:"instance"`
	Usage         Usage  `json:"usage"`
	Total         int64  `json:"total"`
	TotalHuman    string `json:"total_human"`
	EngineLog     int64  `json:"engine_log"`
	AccessLog     int64  `json:"access_log"`
	AccessLogUser string `json:"access_log_user"`
}

// Accountant walks instance and log directories. Missing paths are treated
// as zero, never as errors.
type Accountant struct {
	instancesRoot string
	logsRoot      string
	logger        *slog.Logger
}

// NewAccountant creates a space accountant.
func NewAccountant(instancesRoot, logsRoot string, logger *slog.Logger) *Accountant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Accountant{instancesRoot: instancesRoot, logsRoot: logsRoot, logger: logger}
}

// SizeOf recursively sums file sizes under path for names admitted by
// filter, tracing the tree at debug level. A missing path is zero.
func (a *Accountant) SizeOf(path string, filter Filter) int64 {
	var total int64
	filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			a.logger.Debug("space walk", "dir", p)
			return nil
		}
		if filter(info.Name()) {
			a.logger.Debug("space walk", "file", p, "size", info.Size())
			total += info.Size()
		}
		return nil
	})
	return total
}

// Classify partitions the named instance's footprint into buckets by file
// name pattern.
func (a *Accountant) Classify(name string) Usage {
	var u Usage
	root := filepath.Join(a.instancesRoot, name)
	filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		*bucketFor(&u, info.Name()) += info.Size()
		return nil
	})
	return u
}

// bucketFor maps a store file name onto its usage bucket. Temporal stores
// are recognized before the generic index/schema match so that a temporal
// index lands in its own bucket.
func bucketFor(u *Usage, name string) *int64 {
	switch {
	case strings.Contains(name, "temporal.node"):
		if strings.Contains(name, "index") {
			return &u.TemporalNodeIndex
		}
		return &u.TemporalNodeData
	case strings.Contains(name, "temporal.relationship"):
		if strings.Contains(name, "index") {
			return &u.TemporalRelIndex
		}
		return &u.TemporalRelData
	case strings.Contains(name, "index"), strings.Contains(name, "schema"):
		return &u.IndexSchema
	case strings.HasPrefix(name, "graphstore."):
		return &u.Primary
	default:
		return &u.Other
	}
}

// ReportFor combines classified usage with the engine log and the user's
// access log sizes.
func (a *Accountant) ReportFor(username, instance string) Report {
	u := a.Classify(instance)
	return Report{
		Instance:      instance,
		Usage:         u,
		Total:         u.Total(),
		TotalHuman:    HumanBytes(u.Total()),
		EngineLog:     a.SizeOf(filepath.Join(a.instancesRoot, instance, "engine.log"), All),
		AccessLog:     a.SizeOf(filepath.Join(a.logsRoot, username+".log"), All),
		AccessLogUser: username,
	}
}

// HumanBytes renders a byte count as B/KB/MB/GB/TB/PB/EB with one decimal.
// The unit table runs through EB so every int64 value indexes in range.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
