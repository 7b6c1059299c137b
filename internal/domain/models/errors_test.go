package models

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{&EntitlementRequiredError{ShopDomain: "a"}, KindEntitlementRequired},
		{fmt.Errorf("wrap: %w", &UpstreamQueryError{Messages: []string{"x"}}), KindUpstreamQuery},
		{&UpstreamProtocolError{}, KindUpstreamProtocol},
		{&PaginationLimitError{MaxPages: 3}, KindPaginationLimit},
		{&MalformedPriceError{}, KindMalformedPrice},
		{&CredentialNotFoundError{}, KindCredentialNotFound},
		{&TransportError{Stage: StageUpload, Err: context.DeadlineExceeded}, KindTransport},
		{&RemoteRejectionError{StatusCode: 500}, KindRemoteRejection},
		{fmt.Errorf("boom"), KindUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), "%v", tc.err)
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&TransportError{Stage: StageExtract}))
	assert.True(t, IsTransient(&UpstreamQueryError{Throttled: true}))
	assert.False(t, IsTransient(&UpstreamQueryError{Messages: []string{"Field 'x' doesn't exist"}}))
	assert.True(t, IsTransient(&UpstreamProtocolError{StatusCode: 429}))
	assert.True(t, IsTransient(&UpstreamProtocolError{StatusCode: 502}))
	assert.False(t, IsTransient(&UpstreamProtocolError{StatusCode: 200}))
	assert.False(t, IsTransient(&MalformedPriceError{}))
}

func TestRemoteRejectionError_Message(t *testing.T) {
	err := &RemoteRejectionError{StatusCode: 500, Status: "500 Internal Server Error"}
	assert.Equal(t, "API request failed: 500 - Internal Server Error", err.Error())

	err = &RemoteRejectionError{StatusCode: 418}
	assert.Equal(t, "API request failed: 418 - I'm a teapot", err.Error())
}

func TestNewUpstreamProtocolError_TruncatesBody(t *testing.T) {
	body := make([]byte, 2000)
	for i := range body {
		body[i] = 'x'
	}
	err := NewUpstreamProtocolError(1, 200, body, nil)
	assert.Len(t, err.Body, 500)
}

func TestBillingSubscription_IsActive(t *testing.T) {
	var none *BillingSubscription
	assert.False(t, none.IsActive())
	assert.True(t, (&BillingSubscription{Status: "ACTIVE", PlanName: "Pro"}).IsActive())
	assert.True(t, (&BillingSubscription{Status: "CANCELLED", PlanName: "FREE"}).IsActive())
	assert.False(t, (&BillingSubscription{Status: "PENDING", PlanName: "Pro"}).IsActive())
}

func TestConnection_Nodes(t *testing.T) {
	c := Connection[Variant]{Edges: []Edge[Variant]{{Node: Variant{ID: "1"}}, {Node: Variant{ID: "2"}}}}
	nodes := c.Nodes()
	assert.Len(t, nodes, 2)
	assert.Equal(t, "2", nodes[1].ID)
}
