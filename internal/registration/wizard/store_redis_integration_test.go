//go:build integration

package wizard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"baryo/internal/registration/models"
	"baryo/internal/registration/wizard"
	"baryo/pkg/platform/seal"
	"baryo/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *wizard.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	sealer, err := seal.New("integration-test-secret")
	s.Require().NoError(err)
	s.store = wizard.NewRedisStore(s.redis.Client, sealer, time.Minute)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestSealedRoundTrip() {
	ctx := context.Background()
	session := wizard.NewSession("user-1", "San Isidro", "Rodriguez", "1860")
	session.Record[models.FieldFirstName] = "Juan"
	session.Attachments[models.FieldIDFront] = &models.Attachment{
		Filename:    "front.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	}

	s.Require().NoError(s.store.Save(ctx, session))

	loaded, err := s.store.Find(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("Juan", loaded.Record[models.FieldFirstName])
	s.Equal([]byte("jpeg-bytes"), loaded.Attachments[models.FieldIDFront].Data)
	s.Equal(wizard.FirstStep, loaded.Step)
}

func (s *RedisStoreSuite) TestValuesAreSealedAtRest() {
	ctx := context.Background()
	session := wizard.NewSession("user-1", "San Isidro", "Rodriguez", "1860")
	session.Record[models.FieldFirstName] = "Juan"
	s.Require().NoError(s.store.Save(ctx, session))

	// The raw value in Redis must not leak the plaintext record.
	raw, err := s.redis.Client.Get(ctx, "baryo:wizard:"+session.ID).Bytes()
	s.Require().NoError(err)
	s.NotContains(string(raw), "Juan")
}

func (s *RedisStoreSuite) TestFindMissing() {
	_, err := s.store.Find(context.Background(), "missing")
	s.Require().ErrorIs(err, wizard.ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	session := wizard.NewSession("user-1", "San Isidro", "Rodriguez", "1860")
	s.Require().NoError(s.store.Save(ctx, session))
	s.Require().NoError(s.store.Delete(ctx, session.ID))

	_, err := s.store.Find(ctx, session.ID)
	s.Require().ErrorIs(err, wizard.ErrNotFound)
}
