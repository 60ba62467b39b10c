package archive

import "github.com/lightsoft-dev/light-archive/internal/domain"

func docKey(id string) string {
	return domain.KeyPrefix + "archive:" + id
}

func createdKey() string {
	return domain.KeyPrefix + "archives:created"
}

func viewsKey() string {
	return domain.KeyPrefix + "archives:views"
}

func categoryKey(category string) string {
	return domain.KeyPrefix + "archives:category:" + category
}

func tagKey(tag string) string {
	return domain.KeyPrefix + "archives:tag:" + tag
}
