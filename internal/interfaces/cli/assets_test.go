package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
	"github.com/turtacn/KeyIP-Landscape/pkg/types/common"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBatch(ctx context.Context, msgs []*common.ProducerMessage) (*common.BatchPublishResult, error) {
	args := m.Called(ctx, msgs)
	res, _ := args.Get(0).(*common.BatchPublishResult)
	return res, args.Error(1)
}

func (m *mockPublisher) Close() error { return m.Called().Error(0) }

func publisherDeps(p AssetPublisher) Dependencies {
	deps := testDeps()
	deps.NewPublisher = func(config.KafkaConfig, logging.Logger) (AssetPublisher, error) { return p, nil }
	return deps
}

const threeAssets = `[
	{"id":1,"type":"PATENT","title":"Neural accelerator","assetClass":"G06N"},
	{"id":2,"type":"PATENT","title":"Beamforming model","assetClass":"H04W"},
	{"id":3,"type":"TRADEMARK","title":"RoboMark","assetClass":"ROBOT"}]`

func TestAssetsPublish_FromStdin(t *testing.T) {
	pub := &mockPublisher{}
	var sent []*common.ProducerMessage
	pub.On("PublishBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]*common.ProducerMessage) }).
		Return(&common.BatchPublishResult{Succeeded: 2}, nil).Once()
	pub.On("Close").Return(nil).Once()

	out, err := execute(t, publisherDeps(pub), threeAssets, "assets", "publish", "-f", "-", "--chunk", "2", "--source", "uspto")
	require.NoError(t, err)
	assert.Regexp(t, `Assets:\s+3`, out)
	assert.Regexp(t, `Events:\s+2`, out)
	assert.Regexp(t, `Succeeded:\s+2`, out)

	require.Len(t, sent, 2)
	assert.Equal(t, config.DefaultKafkaAssetSynced, sent[0].Topic)
	assert.Equal(t, "uspto", string(sent[0].Key))
	pub.AssertExpectations(t)
}

func TestAssetsPublish_FromFileWithTopic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.json")
	require.NoError(t, os.WriteFile(path, []byte(threeAssets), 0o600))

	pub := &mockPublisher{}
	pub.On("PublishBatch", mock.Anything, mock.MatchedBy(func(msgs []*common.ProducerMessage) bool {
		return len(msgs) == 1 && msgs[0].Topic == "custom.topic"
	})).Return(&common.BatchPublishResult{Succeeded: 1}, nil).Once()
	pub.On("Close").Return(nil).Once()

	out, err := execute(t, publisherDeps(pub), "", "-o", "json", "assets", "publish", "--file", path, "--topic", "custom.topic")
	require.NoError(t, err)

	var res publishResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, publishResult{Assets: 3, Events: 1, Succeeded: 1}, res)
	pub.AssertExpectations(t)
}

func TestAssetsPublish_DryRunDoesNotConnect(t *testing.T) {
	deps := testDeps()
	deps.NewPublisher = func(config.KafkaConfig, logging.Logger) (AssetPublisher, error) {
		t.Fatal("publisher must not be created on a dry run")
		return nil, nil
	}

	out, err := execute(t, deps, threeAssets, "assets", "publish", "-f", "-", "--dry-run", "--chunk", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: nothing published")
	assert.Regexp(t, `Events:\s+3`, out)
}

func TestAssetsPublish_PartialFailure(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishBatch", mock.Anything, mock.Anything).Return(&common.BatchPublishResult{
		Succeeded: 1,
		Failed:    1,
		Errors:    []common.BatchItemError{{Index: 1, Topic: "ipi.asset.synced", Error: "leader not available"}},
	}, nil).Once()
	pub.On("Close").Return(nil).Once()

	out, err := execute(t, publisherDeps(pub), threeAssets, "assets", "publish", "-f", "-", "--chunk", "2")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAssetSyncFailed))
	assert.Contains(t, out, "event 1: leader not available")
	pub.AssertExpectations(t)
}

func TestAssetsPublish_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  errors.ErrorCode
	}{
		{"not json", "{oops", []string{"-f", "-"}, errors.CodeInvalidParam},
		{"empty array", "[]", []string{"-f", "-"}, errors.ErrCodeValidation},
		{"missing file", "", []string{"-f", filepath.Join(os.TempDir(), "keyip-missing.json")}, errors.CodeInvalidParam},
		{"bad chunk", threeAssets, []string{"-f", "-", "--chunk", "0"}, errors.CodeInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := testDeps()
			deps.NewPublisher = func(config.KafkaConfig, logging.Logger) (AssetPublisher, error) {
				return nil, fmt.Errorf("unexpected")
			}
			args := append([]string{"assets", "publish"}, tt.args...)
			_, err := execute(t, deps, tt.stdin, args...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAssetsPublish_RequiresFile(t *testing.T) {
	_, err := execute(t, testDeps(), "", "assets", "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestAssetsSearch(t *testing.T) {
	api, addr := newFakeAPI(t, map[string]string{"/api/v1/dashboard/assets": `{"data":[
		{"id":1,"assetNumber":"US-1","title":"Neural accelerator","type":"PATENT","assignee":"Acme","status":"ACTIVE","filingDate":"2023-01-01"}],"total":1}`})

	out, err := execute(t, testDeps(), "", "--server", addr, "assets", "search", "ACTIVE", "--type", "PATENT")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", api.lastQuery.Get("category"))
	assert.Equal(t, "PATENT", api.lastQuery.Get("type"))
	assert.Contains(t, out, "1  US-1  Neural accelerator  PATENT  Acme  ACTIVE  2023-01-01")
	assert.Contains(t, out, "Total: 1")
}

func TestAssetsSearch_RequiresCategory(t *testing.T) {
	_, err := execute(t, testDeps(), "", "assets", "search")
	assert.Error(t, err)
}

//Personal.AI order the ending
