// DDoSWatch - Flow Telemetry Denial-of-Service Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ddoswatch

package telemetry

import (
	"fmt"
	"regexp"
	"strconv"
)

// tableNamePattern accepts "table" or "database.table".
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTableName reports whether name is safe to interpolate into a query.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// displayAddr renders an IPv6 column with IPv4-mapped addresses shown as IPv4.
func displayAddr(column string) string {
	return fmt.Sprintf("replaceRegexpOne(IPv6NumToString(%s), '^::ffff:', '')", column)
}

// totalExternalQuery returns the bit-rate of traffic entering through
// external interfaces over the trailing window.
func totalExternalQuery(table string, windowSeconds int) string {
	return fmt.Sprintf(`
		SELECT toFloat64(sum(Bytes * SamplingRate) * 8 / %[2]d) AS bps
		FROM %[1]s
		WHERE TimeReceived > now() - INTERVAL %[2]d SECOND
		  AND InIfBoundary = 'external'`,
		table, windowSeconds)
}

// destinationStatsQuery returns per-destination bit-rate and source
// distribution. Sources are collected as (address, bytes) tuples so that the
// two arrays stay aligned after being split.
func destinationStatsQuery(table string, windowSeconds, maxSources, maxRows int, minBitRate float64) string {
	return fmt.Sprintf(`
		SELECT
			dst_ip,
			bps,
			arrayMap(s -> %[6]s, sources) AS src_ips,
			arrayMap(s -> toUInt64(s.2), sources) AS src_bytes,
			unique_sources
		FROM (
			SELECT
				%[7]s AS dst_ip,
				toFloat64(sum(Bytes * SamplingRate) * 8 / %[2]d) AS bps,
				groupArray(%[3]d)(tuple(SrcAddr, Bytes * SamplingRate)) AS sources,
				uniqExact(SrcAddr) AS unique_sources
			FROM %[1]s
			WHERE TimeReceived > now() - INTERVAL %[2]d SECOND
			GROUP BY DstAddr
			HAVING bps > %[5]s
			ORDER BY bps DESC
			LIMIT %[4]d
		)
		ORDER BY bps DESC`,
		table,
		windowSeconds,
		maxSources,
		maxRows,
		strconv.FormatFloat(minBitRate, 'f', -1, 64),
		displayAddr("s.1"),
		displayAddr("DstAddr"),
	)
}
