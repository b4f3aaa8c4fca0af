package domain

import "time"

// NewsTitleMaxLen — предельная длина заголовка новости в символах.
const NewsTitleMaxLen = 150

// News — новость магазина. Лента упорядочена от свежих к старым по дате публикации.
type News struct {
	ID          int64
	Title       string
	Description string
	PublishedOn time.Time // календарная дата, время не используется
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewNews(title, description string, publishedOn time.Time, imageURL string) *News {
	return &News{
		Title:       title,
		Description: description,
		PublishedOn: DateOf(publishedOn),
		ImageURL:    imageURL,
	}
}
