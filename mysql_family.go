package mysqlreconnect

import (
	"database/sql/driver"
	"errors"
	"net"

	mysql "github.com/go-sql-driver/mysql"
)

func init() {
	RegisterFamilyFunc(mysqlFamily)
}

// mysqlFamily maps go-sql-driver error types onto the family markers the
// decision logic understands. Server-reported errors carry a *MySQLError;
// connections that died before the handshake or mid-packet surface as driver
// sentinels or raw net errors.
func mysqlFamily(err error) ErrorFamily {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return FamilyConnectionNotEstablished
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return FamilyStatementInvalid
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return FamilyConnectionNotEstablished
	}
	if errors.Is(err, mysql.ErrPktSync) || errors.Is(err, mysql.ErrPktSyncMul) || errors.Is(err, mysql.ErrMalformPkt) {
		return FamilyDriver
	}
	return FamilyNone
}
