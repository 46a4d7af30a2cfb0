package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

func TestBuildAuditFilter(t *testing.T) {
	actor := primitive.NewObjectID()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query models.AuditLogQuery
		want  bson.M
	}{
		{
			name:  "пустой запрос",
			query: models.AuditLogQuery{},
			want:  bson.M{},
		},
		{
			name: "все равенства",
			query: models.AuditLogQuery{
				ActorID:    &actor,
				Action:     models.ActionUpdate,
				EntityType: models.EntitySettings,
				EntityID:   "global",
			},
			want: bson.M{
				"actor":      actor,
				"action":     models.ActionUpdate,
				"entityType": models.EntitySettings,
				"entityId":   "global",
			},
		},
		{
			name:  "только начало периода",
			query: models.AuditLogQuery{StartDate: &start},
			want:  bson.M{"createdAt": bson.M{"$gte": start}},
		},
		{
			name:  "период целиком",
			query: models.AuditLogQuery{StartDate: &start, EndDate: &end},
			want:  bson.M{"createdAt": bson.M{"$gte": start, "$lte": end}},
		},
		{
			name:  "поиск по описанию и имени",
			query: models.AuditLogQuery{Search: "plan"},
			want: bson.M{"$or": bson.A{
				bson.M{"description": primitive.Regex{Pattern: "plan", Options: "i"}},
				bson.M{"entityName": primitive.Regex{Pattern: "plan", Options: "i"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildAuditFilter(tt.query))
		})
	}
}

func TestBuildAuditFilter_EscapesSearch(t *testing.T) {
	filter := buildAuditFilter(models.AuditLogQuery{Search: "a.b*(c)"})

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)

	re := or[0].(bson.M)["description"].(primitive.Regex)
	assert.Equal(t, `a\.b\*\(c\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestRetentionCutoff(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now, retentionCutoff(now, 0))
	assert.Equal(t, time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC), retentionCutoff(now, 1))
	assert.Equal(t, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), retentionCutoff(now, 90))

	for _, days := range []int{36500, 106751, 106752, 200000} {
		cutoff := retentionCutoff(now, days)
		assert.True(t, cutoff.Before(now), "days=%d cutoff=%s", days, cutoff)
		assert.Equal(t, now.AddDate(0, 0, -days), cutoff)
	}
	assert.Equal(t, time.Date(1924, 6, 26, 12, 0, 0, 0, time.UTC), retentionCutoff(now, 36500))
}

func TestBuildPipeline(t *testing.T) {
	filter := bson.M{"user": "u1"}

	t.Run("без пагинации", func(t *testing.T) {
		p := buildPipeline(filter, FindOptions{}, nil)
		require.Len(t, p, 1)
		assert.Equal(t, "$match", p[0][0].Key)
	})

	t.Run("сортировка, пагинация и подстановка", func(t *testing.T) {
		p := buildPipeline(filter, FindOptions{Skip: 10, Limit: 5, Sort: newestFirst}, []Populate{actorPopulate})
		require.Len(t, p, 6)

		keys := make([]string, 0, len(p))
		for _, stage := range p {
			keys = append(keys, stage[0].Key)
		}
		assert.Equal(t, []string{"$match", "$sort", "$skip", "$limit", "$lookup", "$unwind"}, keys)
	})
}

func TestPopulateStages(t *testing.T) {
	stages := actorPopulate.stages()
	require.Len(t, stages, 2)

	lookup := stages[0][0].Value.(bson.D).Map()
	assert.Equal(t, CollectionUsers, lookup["from"])
	assert.Equal(t, "actorDetails", lookup["as"])
	assert.Equal(t, bson.D{{Key: "ref", Value: "$actor"}}, lookup["let"])

	pipeline := lookup["pipeline"].(bson.A)
	require.Len(t, pipeline, 2)
	project := pipeline[1].(bson.D)[0]
	assert.Equal(t, "$project", project.Key)
	assert.Len(t, project.Value.(bson.D), 4)

	unwind := stages[1][0].Value.(bson.D).Map()
	assert.Equal(t, "$actorDetails", unwind["path"])
	assert.Equal(t, true, unwind["preserveNullAndEmptyArrays"])
}
