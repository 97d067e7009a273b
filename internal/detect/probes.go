package detect

import (
	"regexp"
	"strings"
)

// DefaultProbes returns the built-in probes, most specific first: Greenplum
// answers PostgreSQL's version() and MariaDB and TiDB answer MySQL's
// @@version_comment, so the forks have to be tried before their parents.
func DefaultProbes() []Probe {
	return []Probe{
		{
			Dialect:      "greenplum",
			Family:       FamilyPostgres,
			Query:        "select gpname from gp_id",
			VersionQuery: "select productversion from gp_version_at_initdb",
		},
		{
			Dialect:      "tidb",
			Family:       FamilyMySQL,
			Query:        "SELECT tidb_version()",
			VersionQuery: "SELECT VERSION()",
			Version:      tidbVersion,
		},
		{
			Dialect: "mariadb",
			Family:  FamilyMySQL,
			Query:   "SELECT VERSION()",
			Match:   contains("mariadb"),
		},
		{
			Dialect:      "postgresql",
			Family:       FamilyPostgres,
			Query:        "SELECT version()",
			Match:        contains("postgresql"),
			VersionQuery: "SHOW server_version",
		},
		{
			Dialect:      "mysql",
			Family:       FamilyMySQL,
			Query:        "SELECT @@version_comment",
			VersionQuery: "SELECT VERSION()",
		},
	}
}

func contains(sub string) func(string) bool {
	return func(v string) bool {
		return strings.Contains(strings.ToLower(v), sub)
	}
}

var versionRe = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// ExtractVersion returns the leading x.y.z part of a server version string,
// or "" when there is none.
func ExtractVersion(raw string) string {
	return versionRe.FindString(raw)
}

// tidbVersion prefers the TiDB release ("8.0.11-TiDB-v7.5.1" gives 7.5.1)
// over the MySQL compatibility version.
func tidbVersion(raw string) string {
	lower := strings.ToLower(raw)
	if i := strings.Index(lower, "tidb-v"); i >= 0 {
		if v := ExtractVersion(raw[i:]); v != "" {
			return v
		}
	}
	return ExtractVersion(raw)
}
