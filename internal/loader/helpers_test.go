package loader

import (
	"time"

	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/aggregate"
	"agaxfeed/internal/feedclient"
	"agaxfeed/internal/httpclient"
)

func demoAggregator(logger log.FieldLogger) *aggregate.Aggregator {
	client := feedclient.New(httpclient.New(5*time.Second), logger)
	return aggregate.New(client, 2*time.Second, logger)
}
