/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cartreel

import (
	"embed"
	"time"

	"github.com/blnkfinance/cartreel/config"
	"github.com/blnkfinance/cartreel/database"
	"github.com/blnkfinance/cartreel/internal/cache"
	"github.com/blnkfinance/cartreel/internal/mailer"
	"github.com/blnkfinance/cartreel/internal/metaobject"
	"github.com/blnkfinance/cartreel/internal/notification"
	redis_db "github.com/blnkfinance/cartreel/internal/redis-db"
	"github.com/blnkfinance/cartreel/internal/session"
	"github.com/redis/go-redis/v9"
)

// Cartreel wires the lifecycle state machine, the abandonment detector and the
// notification pipeline to their stores and collaborators.
type Cartreel struct {
	datasource database.IDataSource
	redis      redis.UniversalClient
	cache      cache.Cache
	mirror     metaobject.Mirror
	mailer     mailer.Sender
	sessions   session.Store
	config     *config.Configuration
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// Dependencies are the collaborators a Cartreel runs against. Cache may be nil.
type Dependencies struct {
	DataSource database.IDataSource
	Redis      redis.UniversalClient
	Cache      cache.Cache
	Mirror     metaobject.Mirror
	Mailer     mailer.Sender
	Sessions   session.Store
}

// New assembles a Cartreel from explicit collaborators.
func New(deps Dependencies, conf *config.Configuration) *Cartreel {
	return &Cartreel{
		datasource: deps.DataSource,
		redis:      deps.Redis,
		cache:      deps.Cache,
		mirror:     deps.Mirror,
		mailer:     deps.Mailer,
		sessions:   deps.Sessions,
		config:     conf,
	}
}

// NewCartreel builds the service from the loaded configuration and the given datasource.
func NewCartreel(db database.IDataSource) (*Cartreel, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient(configuration.Redis)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStaticStore(configuration.Shopify)
	deps := Dependencies{
		DataSource: db,
		Redis:      redisClient.Client(),
		Mirror:     metaobject.NewClient(sessions, configuration.Shopify),
		Mailer:     mailer.NewSMTPSender(configuration.SMTP),
		Sessions:   sessions,
	}
	if !configuration.Cache.Disabled {
		deps.Cache = cache.NewCache(redisClient.Client())
	}
	newCartreel := New(deps, configuration)

	notification.RegisterWebhookSender(SendWebhook)
	return newCartreel, nil
}

// Sessions returns the store that knows which shops have installed the app.
func (c *Cartreel) Sessions() session.Store {
	return c.sessions
}

func (c *Cartreel) lockTimeouts() (lockTimeout, waitTimeout time.Duration) {
	return time.Duration(c.config.Lock.TimeoutSec) * time.Second,
		time.Duration(c.config.Lock.WaitTimeoutSec) * time.Second
}

func (c *Cartreel) cacheTTL() time.Duration {
	return time.Duration(c.config.Cache.TTLSec) * time.Second
}
