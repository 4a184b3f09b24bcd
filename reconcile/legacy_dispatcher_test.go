package reconcile_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/googleapis/gax-go/v2"
	"github.com/pdcgo/collection_service/collection_mock"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/reconcile"
	"github.com/stretchr/testify/assert"
)

func TestLegacyExportHandler(t *testing.T) {
	var sent *cloudtaskspb.CreateTaskRequest
	dispatcher := func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error {
		sent = req
		return nil
	}

	handler := reconcile.NewLegacyExportHandler(dispatcher, "projects/p/locations/l/queues/legacy", "http://legacy.local")

	uploaded := collection_model.PaymentList{
		collection_mock.NewPayment("A", 7, 100, collection_model.MethodCash, cst2024()),
	}
	uploaded[0].SyncedToLegacy = true

	err := handler(context.Background(), newSession(), uploaded)
	assert.Nil(t, err)
	assert.NotNil(t, sent)
	assert.Equal(t, "projects/p/locations/l/queues/legacy", sent.Parent)

	httpreq := sent.Task.GetHttpRequest()
	assert.Equal(t, "http://legacy.local"+reconcile.LegacyExportPath, httpreq.GetUrl())
	assert.Equal(t, cloudtaskspb.HttpMethod_POST, httpreq.GetHttpMethod())
	assert.Equal(t, "application/json", httpreq.GetHeaders()["Content-Type"])

	var body reconcile.LegacyExportRequest
	err = json.Unmarshal(httpreq.GetBody(), &body)
	assert.Nil(t, err)
	assert.Equal(t, uint(7), body.ZoneID)
	assert.Equal(t, uint(3), body.CollectorID)
	assert.Len(t, body.Payments, 1)
	assert.Equal(t, "A", body.Payments[0].ID)
	assert.True(t, body.Payments[0].SyncedToLegacy)

	t.Run("test empty upload sends nothing", func(t *testing.T) {
		sent = nil
		err := handler(context.Background(), newSession(), collection_model.PaymentList{})
		assert.Nil(t, err)
		assert.Nil(t, sent)
	})
}

func TestLocalLegacyDispatcher(t *testing.T) {
	var received []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	handler := reconcile.NewLegacyExportHandler(reconcile.NewLocalLegacyDispatcher(), "", srv.URL)
	err := handler(context.Background(), newSession(), collection_model.PaymentList{
		collection_mock.NewPayment("A", 7, 100, collection_model.MethodCash, cst2024()),
	})
	assert.Nil(t, err)
	assert.Contains(t, string(received), `"id":"A"`)

	t.Run("test server error surfaces", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer failing.Close()

		handler := reconcile.NewLegacyExportHandler(reconcile.NewLocalLegacyDispatcher(), "", failing.URL)
		err := handler(context.Background(), newSession(), collection_model.PaymentList{
			collection_mock.NewPayment("A", 7, 100, collection_model.MethodCash, cst2024()),
		})
		assert.NotNil(t, err)
	})
}
