package mongostore

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iudanet/taskkeeper/internal/models"
)

// sortKeys сопоставляет допустимые поля сортировки полям документа
var sortKeys = map[models.SortField]string{
	models.SortByDueDate:   "dueDate",
	models.SortByCreatedAt: "createdAt",
	models.SortByUpdatedAt: "updatedAt",
	models.SortByTitle:     "title",
	models.SortByStatus:    "status",
	models.SortByPriority:  "priority",
	models.SortByCategory:  "category",
}

// containsRegex ищет подстроку без учета регистра; спецсимволы regex экранируются
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// buildTaskFilter собирает фильтр выборки задач владельца
func buildTaskFilter(ownerID string, f models.TaskFilter) bson.D {
	filter := bson.D{{Key: "userId", Value: ownerID}}

	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if f.Priority != "" {
		filter = append(filter, bson.E{Key: "priority", Value: f.Priority})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: containsRegex(f.Category)})
	}
	if f.Search != "" {
		filter = append(filter, bson.E{Key: "title", Value: containsRegex(f.Search)})
	}

	return filter
}

// buildTaskSort строит порядок сортировки с тем же tiebreak, что и SQL хранилище
func buildTaskSort(sort models.TaskSort) bson.D {
	key, ok := sortKeys[sort.Field]
	if !ok {
		key = sortKeys[models.DefaultTaskSort.Field]
	}

	dir := 1
	if sort.Descending {
		dir = -1
	}

	var order bson.D
	if key == "dueDate" {
		order = append(order, bson.E{Key: "undated", Value: 1})
	}
	order = append(order, bson.E{Key: key, Value: dir})
	if key != "createdAt" {
		order = append(order, bson.E{Key: "createdAt", Value: 1})
	}
	order = append(order, bson.E{Key: "_id", Value: 1})

	return order
}
