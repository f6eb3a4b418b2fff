package sqlstore

import (
	"strings"

	"github.com/iudanet/taskkeeper/internal/models"
)

const taskColumns = `id, user_id, title, description, due_date, status, priority, category, created_at, updated_at`

// sortColumns сопоставляет допустимые поля сортировки колонкам таблицы tasks.
// Имя колонки попадает в SQL только через эту таблицу.
var sortColumns = map[models.SortField]string{
	models.SortByDueDate:   "due_date",
	models.SortByCreatedAt: "created_at",
	models.SortByUpdatedAt: "updated_at",
	models.SortByTitle:     "title",
	models.SortByStatus:    "status",
	models.SortByPriority:  "priority",
	models.SortByCategory:  "category",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// foldCase приводит текст к нижнему регистру по правилам Unicode.
// LOWER() в SQLite знает только ASCII, поэтому поиск идет по колонкам
// title_lower и category_lower, заполненным этой функцией.
func foldCase(s string) string {
	return strings.ToLower(s)
}

// containsPattern строит LIKE-шаблон для поиска подстроки без учета регистра
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(foldCase(s)) + "%"
}

// buildListQuery собирает запрос выборки задач владельца с фильтрами и сортировкой.
// Возвращает запрос с плейсхолдерами "?" (до Rebind) и аргументы.
func buildListQuery(ownerID string, f models.TaskFilter, sort models.TaskSort) (string, []any) {
	var (
		sb   strings.Builder
		args = []any{ownerID}
	)

	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`)

	if f.Status != "" {
		args = append(args, f.Status)
		sb.WriteString(` AND status = ?`)
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		sb.WriteString(` AND priority = ?`)
	}
	if f.Category != "" {
		args = append(args, containsPattern(f.Category))
		sb.WriteString(` AND category_lower LIKE ? ESCAPE '\'`)
	}
	if f.Search != "" {
		args = append(args, containsPattern(f.Search))
		sb.WriteString(` AND title_lower LIKE ? ESCAPE '\'`)
	}

	sb.WriteString(` ORDER BY `)
	sb.WriteString(orderBy(sort))

	return sb.String(), args
}

// orderBy строит ORDER BY. Задачи без срока всегда идут последними,
// при равенстве порядок определяется временем создания и id.
func orderBy(sort models.TaskSort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[models.DefaultTaskSort.Field]
	}

	dir := "ASC"
	if sort.Descending {
		dir = "DESC"
	}

	var parts []string
	if column == "due_date" {
		parts = append(parts, "(due_date IS NULL) ASC")
	}
	parts = append(parts, column+" "+dir)
	if column != "created_at" {
		parts = append(parts, "created_at ASC")
	}
	parts = append(parts, "id ASC")

	return strings.Join(parts, ", ")
}
