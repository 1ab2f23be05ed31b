package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteResponse struct {
	Success     bool `json:"success"`
	VotedOption *int `json:"voted_option"`
	PollResults struct {
		ArticleUID string `json:"article_uid"`
		Options    []struct {
			OptionIndex int    `json:"option_index"`
			OptionText  string `json:"option_text"`
			VoteCount   int64  `json:"vote_count"`
			Percentage  int    `json:"percentage"`
		} `json:"options"`
		TotalVotes int64 `json:"total_votes"`
	} `json:"poll_results"`
}

func castVote(t *testing.T, app *TestApp, token, articleUID string, optionIndex int, optionText string) *http.Response {
	t.Helper()
	return doJSON(t, app, "POST", "/api/polls/"+articleUID+"/votes", token, map[string]any{
		"option_index":  optionIndex,
		"option_text":   optionText,
		"poll_question": "Do you agree?",
		"locale":        "en-us",
	})
}

func TestFirstVote(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, token := createUserAndToken(t, app.DB)

	resp := castVote(t, app, token, "p1", 0, "Yes")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var vr voteResponse
	decodeBody(t, resp, &vr)
	assert.True(t, vr.Success)
	require.Len(t, vr.PollResults.Options, 1)
	assert.Equal(t, 0, vr.PollResults.Options[0].OptionIndex)
	assert.Equal(t, "Yes", vr.PollResults.Options[0].OptionText)
	assert.Equal(t, int64(1), vr.PollResults.Options[0].VoteCount)
	assert.Equal(t, 100, vr.PollResults.Options[0].Percentage)
}

func TestVoteChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	userID, token := createUserAndToken(t, app.DB)

	resp := castVote(t, app, token, "p1", 0, "Yes")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Casting a different option without the change operation conflicts
	resp = castVote(t, app, token, "p1", 1, "No")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Change moves the count from option 0 to option 1
	resp = doJSON(t, app, "PUT", "/api/polls/p1/votes", token, map[string]any{
		"option_index": 1,
		"option_text":  "No",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vr voteResponse
	decodeBody(t, resp, &vr)
	require.Len(t, vr.PollResults.Options, 2)
	assert.Equal(t, int64(0), vr.PollResults.Options[0].VoteCount)
	assert.Equal(t, 0, vr.PollResults.Options[0].Percentage)
	assert.Equal(t, int64(1), vr.PollResults.Options[1].VoteCount)
	assert.Equal(t, 100, vr.PollResults.Options[1].Percentage)
	assert.Equal(t, int64(1), vr.PollResults.TotalVotes)

	// Exactly one ledger entry, now on option 1
	var optionIndex, rows int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM poll_votes WHERE article_uid = 'p1'").Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	err = app.DB.QueryRow("SELECT option_index FROM poll_votes WHERE article_uid = 'p1' AND user_id = $1", userID).Scan(&optionIndex)
	require.NoError(t, err)
	assert.Equal(t, 1, optionIndex)
}

func TestChangeVote_WithoutVote(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, token := createUserAndToken(t, app.DB)

	resp := doJSON(t, app, "PUT", "/api/polls/p1/votes", token, map[string]any{
		"option_index": 1,
		"option_text":  "No",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestVote_Unauthenticated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := castVote(t, app, "", "p1", 0, "Yes")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	var rows int
	err := app.DB.QueryRow("SELECT COUNT(*) FROM poll_votes").Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rows, "rejected vote must perform zero writes")
	err = app.DB.QueryRow("SELECT COUNT(*) FROM polls").Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rows)
}

func TestResults_DistinctUsersAndBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, token1 := createUserAndToken(t, app.DB)
	_, token2 := createUserAndToken(t, app.DB)
	_, token3 := createUserAndToken(t, app.DB)

	for _, c := range []struct {
		token  string
		option int
		text   string
	}{
		{token1, 0, "Yes"},
		{token2, 0, "Yes"},
		{token3, 1, "No"},
	} {
		resp := castVote(t, app, c.token, "p1", c.option, c.text)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// Single-poll read with the caller's own vote attached
	resp := doJSON(t, app, "GET", "/api/polls/p1/results", token3, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var single struct {
		PollResults struct {
			Options []struct {
				VoteCount  int64 `json:"vote_count"`
				Percentage int   `json:"percentage"`
			} `json:"options"`
			TotalVotes int64 `json:"total_votes"`
		} `json:"poll_results"`
		UserVote *struct {
			OptionIndex int `json:"option_index"`
		} `json:"user_vote"`
		IsAuthenticated bool `json:"is_authenticated"`
	}
	decodeBody(t, resp, &single)

	require.Len(t, single.PollResults.Options, 2)
	assert.Equal(t, int64(2), single.PollResults.Options[0].VoteCount)
	assert.Equal(t, 67, single.PollResults.Options[0].Percentage)
	assert.Equal(t, int64(1), single.PollResults.Options[1].VoteCount)
	assert.Equal(t, 33, single.PollResults.Options[1].Percentage)
	assert.True(t, single.IsAuthenticated)
	require.NotNil(t, single.UserVote)
	assert.Equal(t, 1, single.UserVote.OptionIndex)

	// Batch read, anonymous: results only, no user votes
	resp = doJSON(t, app, "POST", "/api/polls/results/batch", "", map[string]any{
		"article_uids": []string{"p1", "unknown"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var batch struct {
		PollResults map[string]struct {
			TotalVotes int64 `json:"total_votes"`
		} `json:"poll_results"`
		IsAuthenticated bool `json:"is_authenticated"`
	}
	decodeBody(t, resp, &batch)

	require.Len(t, batch.PollResults, 1)
	assert.Equal(t, int64(3), batch.PollResults["p1"].TotalVotes)
	assert.False(t, batch.IsAuthenticated)
}

func TestReconcileRebuildsDriftedCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	_, token := createUserAndToken(t, app.DB)
	resp := castVote(t, app, token, "p1", 0, "Yes")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Drift the projection, then rebuild from the ledger
	_, err := app.DB.Exec("UPDATE poll_counts SET vote_count = 42 WHERE article_uid = 'p1'")
	require.NoError(t, err)

	require.NoError(t, app.ReconcileSvc.RebuildAllCounts(context.Background()))

	var count int64
	err = app.DB.QueryRow("SELECT vote_count FROM poll_counts WHERE article_uid = 'p1' AND option_index = 0").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
