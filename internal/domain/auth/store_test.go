package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
)

func TestRedisSavePreference(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewPreferenceStore(db, 0)

	mockRedis.ExpectTxPipeline()
	mockRedis.ExpectSet("rememberMe:client-1", "true", 0).SetVal("OK")
	mockRedis.ExpectSet("userEmail:client-1", "jo@example.com", 0).SetVal("OK")
	mockRedis.ExpectTxPipelineExec()

	if err := store.Save(context.Background(), "client-1", RememberMePreference{Email: "jo@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisSavePreferenceWithTTL(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewPreferenceStore(db, 24*time.Hour)

	// both keys go out in one transaction; a failure aborts it
	mockRedis.ExpectTxPipeline()
	mockRedis.ExpectSet("rememberMe:c", "true", 24*time.Hour).SetVal("OK")
	mockRedis.ExpectSet("userEmail:c", "a@b.co", 24*time.Hour).SetErr(errors.New("connection reset"))

	if err := store.Save(context.Background(), "c", RememberMePreference{Email: "a@b.co"}); err == nil {
		t.Error("expected save error")
	}
	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisLoadPreference(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	if db == nil {
		t.Fatalf("Redis mock client is nil")
	}
	store := NewPreferenceStore(db, 0)

	mockRedis.ExpectMGet("rememberMe:client-1", "userEmail:client-1").
		SetVal([]interface{}{"true", "jo@example.com"})

	pref, err := store.Load(context.Background(), "client-1")
	if err != nil {
		t.Fatal(err)
	}
	if pref == nil || pref.Email != "jo@example.com" {
		t.Errorf("expected remembered jo@example.com, got %+v", pref)
	}
	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisLoadPreferenceMissing(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewPreferenceStore(db, 0)

	mockRedis.ExpectMGet("rememberMe:x", "userEmail:x").SetVal([]interface{}{nil, nil})
	mockRedis.ExpectMGet("rememberMe:y", "userEmail:y").SetVal([]interface{}{"true", nil})

	for _, id := range []string{"x", "y"} {
		pref, err := store.Load(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if pref != nil {
			t.Errorf("client %s: expected no preference, got %+v", id, pref)
		}
	}
	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedisClearPreference(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	store := NewPreferenceStore(db, 0)

	mockRedis.ExpectDel("rememberMe:client-1", "userEmail:client-1").SetVal(2)

	if err := store.Clear(context.Background(), "client-1"); err != nil {
		t.Fatal(err)
	}
	if err := mockRedis.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMemoryPreferenceStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPreferenceStore()

	if pref, _ := store.Load(ctx, "c"); pref != nil {
		t.Fatalf("expected empty store, got %+v", pref)
	}
	if err := store.Save(ctx, "c", RememberMePreference{Email: "a@b.co"}); err != nil {
		t.Fatal(err)
	}
	if pref, _ := store.Load(ctx, "c"); pref == nil || pref.Email != "a@b.co" {
		t.Errorf("expected a@b.co, got %+v", pref)
	}
	if pref, _ := store.Load(ctx, "other"); pref != nil {
		t.Errorf("preferences leaked across clients: %+v", pref)
	}
	if err := store.Clear(ctx, "c"); err != nil {
		t.Fatal(err)
	}
	if pref, _ := store.Load(ctx, "c"); pref != nil {
		t.Errorf("expected cleared store, got %+v", pref)
	}
}
