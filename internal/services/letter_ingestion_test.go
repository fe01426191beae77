package services

import (
	"context"
	"errors"
	"fmt"
	"present-delivery-service/internal/domain"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/ports"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func s3EventBody(bucket, key string) string {
	return fmt.Sprintf(`{"Records":[{"eventSource":"aws:s3","eventName":"ObjectCreated:Put","s3":{"bucket":{"name":%q},"object":{"key":%q,"size":1024}}}]}`, bucket, key)
}

type ingestionFixture struct {
	source    *MockLetterSource
	extractor *MockLetterExtractor
	resolver  *MockAddressResolver
	store     *MockDeliveryStore
	pipeline  *LetterIngestion
}

func newIngestionFixture() *ingestionFixture {
	f := &ingestionFixture{
		source:    new(MockLetterSource),
		extractor: new(MockLetterExtractor),
		resolver:  new(MockAddressResolver),
		store:     new(MockDeliveryStore),
	}
	f.pipeline = NewLetterIngestion(f.source, f.extractor, f.resolver, f.store, discardLogger())
	return f
}

func TestLetterIngestionIsolatesFailures(t *testing.T) {
	f := newIngestionFixture()

	for _, n := range []string{"1", "2", "3"} {
		f.source.On("Fetch", mock.Anything, ports.ObjectLocator{Bucket: "letters", Key: "letter" + n + ".png"}).
			Return([]byte("img"+n), nil)
	}

	f.extractor.On("Extract", mock.Anything, []byte("img1")).Return(ports.LetterInfo{PresentName: "bike", Address: "addr1"}, nil)
	f.extractor.On("Extract", mock.Anything, []byte("img2")).Return(ports.LetterInfo{}, errs.ExtractionError("bedrock.Extract", errors.New("decode model output")))
	f.extractor.On("Extract", mock.Anything, []byte("img3")).Return(ports.LetterInfo{PresentName: "doll", Address: "addr3"}, nil)

	addr1 := domain.Address{Point: domain.GeoPoint{Latitude: 38.1, Longitude: 140.1}, Text: "canonical1"}
	addr3 := domain.Address{Point: domain.GeoPoint{Latitude: 38.3, Longitude: 140.3}, Text: "canonical3"}
	f.resolver.On("Resolve", mock.Anything, "addr1").Return(addr1, nil)
	f.resolver.On("Resolve", mock.Anything, "addr3").Return(addr3, nil)

	f.store.On("InsertPresent", mock.Anything, "bike", addr1).Return(nil).Once()
	f.store.On("InsertPresent", mock.Anything, "doll", addr3).Return(nil).Once()

	res := f.pipeline.Process(context.Background(), []LetterMessage{
		{ID: "m1", Body: s3EventBody("letters", "letter1.png")},
		{ID: "m2", Body: s3EventBody("letters", "letter2.png")},
		{ID: "m3", Body: s3EventBody("letters", "letter3.png")},
	})

	assert.Equal(t, []string{"m2"}, res.Failed)
	assert.False(t, res.OK())
	f.store.AssertNumberOfCalls(t, "InsertPresent", 2)
	f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, "")
	f.store.AssertExpectations(t)
}

func TestLetterIngestionEveryStageCanFail(t *testing.T) {
	loc := ports.ObjectLocator{Bucket: "letters", Key: "a.png"}
	info := ports.LetterInfo{PresentName: "bike", Address: "addr"}
	addr := domain.Address{Text: "canonical"}

	cases := []struct {
		name  string
		body  string
		setup func(f *ingestionFixture)
	}{
		{
			name:  "unparseable body",
			body:  `not json`,
			setup: func(f *ingestionFixture) {},
		},
		{
			name: "fetch",
			body: s3EventBody("letters", "a.png"),
			setup: func(f *ingestionFixture) {
				f.source.On("Fetch", mock.Anything, loc).Return(nil, errs.FetchError("s3.Fetch", errors.New("NoSuchKey")))
			},
		},
		{
			name: "geocode",
			body: s3EventBody("letters", "a.png"),
			setup: func(f *ingestionFixture) {
				f.source.On("Fetch", mock.Anything, loc).Return([]byte("img"), nil)
				f.extractor.On("Extract", mock.Anything, []byte("img")).Return(info, nil)
				f.resolver.On("Resolve", mock.Anything, "addr").Return(domain.Address{}, errs.GeocodeError("gsi.Resolve", errors.New("no results")))
			},
		},
		{
			name: "store",
			body: s3EventBody("letters", "a.png"),
			setup: func(f *ingestionFixture) {
				f.source.On("Fetch", mock.Anything, loc).Return([]byte("img"), nil)
				f.extractor.On("Extract", mock.Anything, []byte("img")).Return(info, nil)
				f.resolver.On("Resolve", mock.Anything, "addr").Return(addr, nil)
				f.store.On("InsertPresent", mock.Anything, "bike", addr).Return(errs.StoreError("store.InsertPresent", errors.New("commit tx")))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newIngestionFixture()
			tc.setup(f)

			res := f.pipeline.Process(context.Background(), []LetterMessage{{ID: "only", Body: tc.body}})
			assert.Equal(t, []string{"only"}, res.Failed)
		})
	}
}

func TestLetterIngestionEmptyBatch(t *testing.T) {
	res := newIngestionFixture().pipeline.Process(context.Background(), nil)
	assert.True(t, res.OK())
	assert.NotNil(t, res.Failed)
}

func TestParseLetterLocator(t *testing.T) {
	loc, err := ParseLetterLocator(s3EventBody("santa-letters", "inbox/letter+from+taro%E3%81%AE.png"))
	require.NoError(t, err)
	assert.Equal(t, ports.ObjectLocator{Bucket: "santa-letters", Key: "inbox/letter from taroの.png"}, loc)

	for name, body := range map[string]string{
		"not json":   `{`,
		"no records": `{"Service":"Amazon S3","Event":"s3:TestEvent"}`,
		"no bucket":  s3EventBody("", "a.png"),
		"bad escape": s3EventBody("b", "%zz"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLetterLocator(body)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestFoldResults(t *testing.T) {
	res := foldResults([]ItemResult{
		{ID: "a"},
		{ID: "b", Err: errors.New("x")},
		{ID: "c", Err: errors.New("y")},
	})
	assert.Equal(t, []string{"b", "c"}, res.Failed)
}
