package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	"github.com/googleapis/gax-go/v2"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/pdcgo/collection_service/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const LegacyExportPath = "/legacy/v1/payments/import"

type LegacyDispatcher func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error

func NewCloudTaskLegacyDispatcher(
	client *cloudtasks.Client,
) LegacyDispatcher {
	return func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error {
		_, err := client.CreateTask(ctx, req, opts...)
		return err
	}
}

// NewLocalLegacyDispatcher posts the task body straight to its url. Used
// when no queue is configured.
func NewLocalLegacyDispatcher() LegacyDispatcher {
	return func(ctx context.Context, req *cloudtaskspb.CreateTaskRequest, opts ...gax.CallOption) error {
		httpreq := req.Task.GetHttpRequest()

		htreq, err := http.NewRequestWithContext(ctx, http.MethodPost, httpreq.GetUrl(), bytes.NewBuffer(httpreq.Body))
		if err != nil {
			return err
		}
		for k, v := range httpreq.GetHeaders() {
			htreq.Header.Set(k, v)
		}

		res, err := http.DefaultClient.Do(htreq)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("legacy export returned %s", res.Status)
		}

		return nil
	}
}

type LegacyExportPayment struct {
	ID             string `json:"id"`
	SaleRef        uint   `json:"docto_cc_id"`
	SyncedToLegacy bool   `json:"synced_to_legacy"`
}

type LegacyExportRequest struct {
	ZoneID      uint                   `json:"zone_id"`
	CollectorID uint                   `json:"collector_id"`
	Payments    []*LegacyExportPayment `json:"payments"`
}

// NewLegacyExportHandler tells the legacy importer which payments just
// reached the remote ledger. The synced flag is forwarded as is, it does
// not decide what gets exported.
func NewLegacyExportHandler(dispatcher LegacyDispatcher, queuePath string, endpoint string) AfterCommitHandler {
	return func(ctx context.Context, sess *session.Session, uploaded collection_model.PaymentList) error {
		if len(uploaded) == 0 {
			return nil
		}

		msg := LegacyExportRequest{
			ZoneID:      sess.ZoneID(),
			CollectorID: sess.Collector.CollectorID,
			Payments:    []*LegacyExportPayment{},
		}
		for _, pay := range uploaded {
			msg.Payments = append(msg.Payments, &LegacyExportPayment{
				ID:             pay.ID,
				SaleRef:        pay.SaleRef,
				SyncedToLegacy: pay.SyncedToLegacy,
			})
		}

		content, err := json.Marshal(&msg)
		if err != nil {
			return err
		}

		reqheaders := map[string]string{
			"Content-Type": "application/json",
		}
		otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(reqheaders))

		httpreq := &cloudtaskspb.Task_HttpRequest{
			HttpRequest: &cloudtaskspb.HttpRequest{
				Url:        endpoint + LegacyExportPath,
				HttpMethod: cloudtaskspb.HttpMethod_POST,
				Headers:    reqheaders,
				Body:       content,
			},
		}

		task := cloudtaskspb.CreateTaskRequest{
			Parent: queuePath,
			Task: &cloudtaskspb.Task{
				MessageType: httpreq,
			},
		}

		return dispatcher(ctx, &task)
	}
}
