// Package document provides persistence ports over document stores: MongoDB
// through the store/mongodb adapter and DynamoDB through store/dynamodb.
package document

import (
	"context"
	"fmt"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
	"github.com/HarshaM0211/jira-software/pkg/i18n"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

// KeyFunc assigns keys to new documents. Document stores never generate
// application keys themselves.
type KeyFunc[K comparable] func(ctx context.Context) (K, error)

// FromGenerator adapts an in-process KeyGenerator.
func FromGenerator[K comparable](gen repository.KeyGenerator[K]) KeyFunc[K] {
	return func(context.Context) (K, error) {
		return gen(), nil
	}
}

func unknownProperty(property string) error {
	return apperror.ValidationWithCode(apperror.CodeUnknownProperty,
		fmt.Sprintf("unknown search property %s", property), i18n.Params{"property": property}, nil)
}

func versionOf(entity any) (repository.Versioned, bool) {
	v, ok := entity.(repository.Versioned)
	return v, ok
}
