package collector

import (
	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
)

func connectToRedis(spec ConnectionSpec) (redis.Conn, error) {
	tlsConfig, err := createClientTLSConfig(spec)
	if err != nil {
		return nil, err
	}

	options := []redis.DialOption{
		redis.DialConnectTimeout(spec.timeout()),
		redis.DialReadTimeout(spec.timeout()),
		redis.DialWriteTimeout(spec.timeout()),
	}

	if tlsConfig != nil {
		options = append(options,
			redis.DialUseTLS(true),
			redis.DialTLSConfig(tlsConfig),
		)
	}

	log.Debugf("Trying Dial(): tcp %s", spec.Addr())
	return redis.Dial("tcp", spec.Addr(), options...)
}

// setupConnection performs the AUTH handshake and db selection before any
// stats command is issued. The password is deliberately not passed as a
// DialOption so a rejected credential is distinguishable from a dial
// failure.
func setupConnection(c redis.Conn, spec ConnectionSpec) error {
	if spec.Password != "" {
		args := []interface{}{spec.Password}
		if spec.User != "" {
			args = []interface{}{spec.User, spec.Password}
		}
		if _, err := doRedisCmd(c, "AUTH", args...); err != nil {
			log.Debugf("AUTH err: %s", err)
			return &CollectError{Kind: AuthError, Err: err}
		}
	}

	if spec.DB != 0 {
		if _, err := doRedisCmd(c, "SELECT", spec.DB); err != nil {
			log.Debugf("SELECT %d err: %s", spec.DB, err)
			return &CollectError{Kind: classifyCmdErr(err), Err: err}
		}
	}

	return nil
}

func doRedisCmd(c redis.Conn, cmd string, args ...interface{}) (interface{}, error) {
	log.Debugf("c.Do() - running command: %s %s", cmd, args)
	res, err := c.Do(cmd, args...)
	if err != nil {
		log.Debugf("c.Do() - err: %s", err)
	}
	log.Debugf("c.Do() - done")
	return res, err
}
