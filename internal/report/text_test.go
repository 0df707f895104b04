package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/station-scout/internal/domain"
)

func TestTextReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	ranking := domain.Ranking{
		Destinations: []string{"新宿", "東京"},
		Candidates: []domain.RankedCandidate{
			{
				CandidateScore: domain.CandidateScore{Station: "四ツ谷", Score: 7331.25},
				Rank:           1,
				Rent:           12.5,
				Lines:          []string{"ＪＲ中央線", "東京メトロ丸ノ内線"},
				Legs: []domain.Leg{
					{Destination: "新宿", Time: 5},
					{Destination: "東京", Time: 7, TransitCount: 1},
				},
			},
			{
				CandidateScore: domain.CandidateScore{Station: "代々木", Score: 9000},
				Rank:           2,
				Rent:           10,
				Lines:          []string{"ＪＲ山手線"},
				Legs: []domain.Leg{
					{Destination: "新宿", Time: 2},
					{Destination: "東京", Time: 20, TransitCount: 1},
				},
			},
		},
	}

	require.NoError(t, NewTextReporter(&buf).Report(context.Background(), ranking))

	want := "目的地: 新宿, 東京\n\n" +
		"#1 駅名: 四ツ谷, score: 7331\n" +
		"家賃相場: 12.5 万円\n" +
		"線路: ＪＲ中央線, 東京メトロ丸ノ内線\n" +
		"到着時間:\n" +
		"\t新宿: 5分, 乗り換え回数: 0\n" +
		"\t東京: 7分, 乗り換え回数: 1\n\n" +
		"#2 駅名: 代々木, score: 9000\n" +
		"家賃相場: 10 万円\n" +
		"線路: ＪＲ山手線\n" +
		"到着時間:\n" +
		"\t新宿: 2分, 乗り換え回数: 0\n" +
		"\t東京: 20分, 乗り換え回数: 1\n\n"
	assert.Equal(t, want, buf.String())
}

func TestTextReporter_EmptyRanking(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(&buf).Report(context.Background(), domain.Ranking{Destinations: []string{"新宿"}}))
	assert.Contains(t, buf.String(), "条件を満たす駅はありません")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestTextReporter_WriteError(t *testing.T) {
	err := NewTextReporter(failingWriter{}).Report(context.Background(), domain.Ranking{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write text report")
}
