package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ojashyadav101/lucy-sub000/internal/workspace"
)

type fakeStore struct {
	workspace.Store
	crons     map[string]workspace.CronDoc
	learnings string
	deleted   []string
	putCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{crons: make(map[string]workspace.CronDoc)}
}

func (s *fakeStore) GetCron(ctx context.Context, workspaceID, slug string) (workspace.CronDoc, error) {
	doc, ok := s.crons[slug]
	if !ok {
		return workspace.CronDoc{}, context.DeadlineExceeded
	}
	return doc, nil
}

func (s *fakeStore) PutCron(ctx context.Context, workspaceID string, doc workspace.CronDoc) error {
	s.putCalls++
	s.crons[doc.Slug] = doc
	return nil
}

func (s *fakeStore) DeleteCron(ctx context.Context, workspaceID, slug string) error {
	s.deleted = append(s.deleted, slug)
	delete(s.crons, slug)
	return nil
}

func (s *fakeStore) LoadLearnings(ctx context.Context, workspaceID, slug string) (string, error) {
	return s.learnings, nil
}

type fakeAgents struct {
	response string
	err      error
	calls    int
}

func (a *fakeAgents) RunScheduled(ctx context.Context, workspaceID, instruction string) (string, error) {
	a.calls++
	return a.response, a.err
}

type fakeScripts struct {
	response string
	err      error
}

func (s *fakeScripts) RunScript(ctx context.Context, workspaceID, script string) (string, error) {
	return s.response, s.err
}

type fakeDelivery struct {
	channelMsgs []string
	userMsgs    []string
}

func (d *fakeDelivery) DeliverToChannel(ctx context.Context, workspaceID, channel, text string) error {
	d.channelMsgs = append(d.channelMsgs, text)
	return nil
}

func (d *fakeDelivery) DeliverToUser(ctx context.Context, workspaceID, userID, text string) error {
	d.userMsgs = append(d.userMsgs, text)
	return nil
}

func TestRunJob_DeliversAgentResponseToChannel(t *testing.T) {
	store := newFakeStore()
	agents := &fakeAgents{response: "build is green"}
	delivery := &fakeDelivery{}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: delivery}

	doc := workspace.CronDoc{Slug: "status", Type: "agent", Description: "report build status", DeliveryMode: "channel", DeliveryChannel: "C1"}
	err := RunJob(context.Background(), deps, "ws1", doc, time.Now())
	require.NoError(t, err)
	require.Equal(t, []string{"build is green"}, delivery.channelMsgs)
	require.Equal(t, 1, agents.calls)
}

func TestRunJob_SuppressesHeartbeatOK(t *testing.T) {
	store := newFakeStore()
	agents := &fakeAgents{response: "HEARTBEAT_OK"}
	delivery := &fakeDelivery{}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: delivery}

	doc := workspace.CronDoc{Slug: "heartbeat-check", Type: "agent", Description: "check", DeliveryMode: "channel", DeliveryChannel: "C1"}
	require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
	require.Empty(t, delivery.channelMsgs)
}

func TestRunJob_SuppressesEmptyAndSkipResponses(t *testing.T) {
	for _, resp := range []string{"", "  ", "skip", "SKIP"} {
		store := newFakeStore()
		agents := &fakeAgents{response: resp}
		delivery := &fakeDelivery{}
		deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: delivery}
		doc := workspace.CronDoc{Slug: "j", Type: "agent", DeliveryMode: "channel", DeliveryChannel: "C1"}
		require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
		require.Empty(t, delivery.channelMsgs)
	}
}

func TestRunJob_SkipsWhenDependencyDidNotSucceedToday(t *testing.T) {
	store := newFakeStore()
	store.crons["dep"] = workspace.CronDoc{Slug: "dep", LastSuccessDate: "2020-01-01"}
	agents := &fakeAgents{response: "should not run"}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: &fakeDelivery{}}

	doc := workspace.CronDoc{Slug: "dependent", DependsOn: "dep", Type: "agent"}
	require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
	require.Equal(t, 0, agents.calls)
}

func TestRunJob_SkipsWhenConditionScriptFalsy(t *testing.T) {
	store := newFakeStore()
	agents := &fakeAgents{response: "should not run"}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{response: "false"}, Delivery: &fakeDelivery{}}

	doc := workspace.CronDoc{Slug: "conditional", ConditionScript: "check()", Type: "agent"}
	require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
	require.Equal(t, 0, agents.calls)
}

func TestRunJob_SelfDeletesOnMaxRunsReached(t *testing.T) {
	store := newFakeStore()
	agents := &fakeAgents{response: "done"}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: &fakeDelivery{}}

	doc := workspace.CronDoc{Slug: "onceonly", Type: "agent", MaxRuns: 1, RunCount: 0, DeliveryMode: "channel"}
	require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
	require.Contains(t, store.deleted, "onceonly")
}

func TestRunJob_NotifiesOnFailureAfterRetriesExhausted(t *testing.T) {
	store := newFakeStore()
	agents := &fakeAgents{err: context.DeadlineExceeded}
	delivery := &fakeDelivery{}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: delivery}

	doc := workspace.CronDoc{Slug: "flaky", Type: "agent", Retries: 0, NotifyOnFailure: true, RequestingUser: "u1"}
	err := RunJob(context.Background(), deps, "ws1", doc, time.Now())
	require.Error(t, err)
	require.Len(t, delivery.userMsgs, 1)
}

func TestRunJob_ScriptTypeRunsScriptRunner(t *testing.T) {
	store := newFakeStore()
	scripts := &fakeScripts{response: "script output"}
	delivery := &fakeDelivery{}
	deps := Deps{Store: store, Agents: &fakeAgents{}, Scripts: scripts, Delivery: delivery}

	doc := workspace.CronDoc{Slug: "scripted", Type: "script", Description: "print('hi')", DeliveryMode: "channel", DeliveryChannel: "C1"}
	require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
	require.Equal(t, []string{"script output"}, delivery.channelMsgs)
}

func TestRunJob_DirectMessageDeliveryMode(t *testing.T) {
	store := newFakeStore()
	agents := &fakeAgents{response: "your report"}
	delivery := &fakeDelivery{}
	deps := Deps{Store: store, Agents: agents, Scripts: &fakeScripts{}, Delivery: delivery}

	doc := workspace.CronDoc{Slug: "dm-job", Type: "agent", DeliveryMode: "directMessage", RequestingUser: "u1"}
	require.NoError(t, RunJob(context.Background(), deps, "ws1", doc, time.Now()))
	require.Equal(t, []string{"your report"}, delivery.userMsgs)
}
