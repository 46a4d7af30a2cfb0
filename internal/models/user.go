package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User - пользователь системы (коллекция users). Здесь используется только
// для подстановки автора записи аудита и в тестах.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	FirstName string             `bson:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty"`
	Role      string             `bson:"role"`
}
