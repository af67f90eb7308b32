package mysqlreconnect

import (
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// ConnectionDescriptor identifies the connection an operation ran on. It is
// optional retry-decision input: the allow-list is only consulted when a
// descriptor is available.
type ConnectionDescriptor struct {
	Host     string
	Database string
	Username string
}

func (d *ConnectionDescriptor) String() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s;%s", d.Host, d.Database, d.Username)
}

// DescriptorFromDSN extracts connection metadata from a go-sql-driver DSN.
func DescriptorFromDSN(dsn string) (*ConnectionDescriptor, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	host := mc.Addr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return &ConnectionDescriptor{
		Host:     host,
		Database: mc.DBName,
		Username: mc.User,
	}, nil
}
