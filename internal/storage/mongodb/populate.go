package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Populate описывает подстановку документа по ссылке: значение LocalField
// ищется по _id в коллекции From и кладётся в поле As. Select ограничивает
// набор подставляемых полей.
type Populate struct {
	LocalField string
	From       string
	As         string
	Select     []string
}

func (p Populate) stages() []bson.D {
	inner := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$eq", Value: bson.A{"$_id", "$$ref"}},
		}}}}},
	}
	if len(p.Select) > 0 {
		projection := bson.D{}
		for _, f := range p.Select {
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		inner = append(inner, bson.D{{Key: "$project", Value: projection}})
	}

	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: p.From},
			{Key: "let", Value: bson.D{{Key: "ref", Value: "$" + p.LocalField}}},
			{Key: "pipeline", Value: inner},
			{Key: "as", Value: p.As},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + p.As},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// buildPipeline собирает агрегацию: фильтр, сортировка и пагинация
// применяются до подстановки, чтобы $lookup выполнялся только для страницы.
func buildPipeline(filter any, opts FindOptions, populate []Populate) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
	}
	if len(opts.Sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: opts.Sort}})
	}
	if opts.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: opts.Skip}})
	}
	if opts.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: opts.Limit}})
	}
	for _, p := range populate {
		pipeline = append(pipeline, p.stages()...)
	}
	return pipeline
}
