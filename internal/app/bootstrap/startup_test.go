package bootstrap

import (
	"testing"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/realtyview/agentpulse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureSchema_DuplicateDayRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db, MongoClient: db.Client()}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	agent := fixtures.CreateConnectedAgent(ctx, "alice")

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := bson.M{"agent_id": agent.ID, "metric_date": day}
	if _, err := db.Collection("daily_metrics").InsertOne(ctx, doc); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Collection("daily_metrics").InsertOne(ctx, doc); err == nil {
		t.Error("second insert for the same (agent, day) should violate the unique index")
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db, MongoClient: db.Client()}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, &config.CoreConfig{}, AppConfig{}, deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d failed: %v", i+1, err)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	base := AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		RateLimitPerHour: 200,
		BatchPacing:      1,
		GraphCallTimeout: 1,
		AdminAPIToken:    "token",
	}

	cases := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", "dev", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "localhost" }, true},
		{"zero rate limit", "dev", func(c *AppConfig) { c.RateLimitPerHour = 0 }, true},
		{"zero graph timeout", "dev", func(c *AppConfig) { c.GraphCallTimeout = 0 }, true},
		{"no token in dev", "dev", func(c *AppConfig) { c.AdminAPIToken = "" }, false},
		{"no token in prod", "prod", func(c *AppConfig) { c.AdminAPIToken = "" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tc.env}, cfg, testLogger())
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateConfig: got err %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
