package redis

import (
	"context"
	"reflect"

	"github.com/redis/go-redis/v9"
	omitnilpointers "github.com/sharetube/mediasync/pkg/omit-nil-pointers"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// structFields maps the redis-tagged fields of value to their values. Nil
// pointers are skipped and the rest are dereferenced.
func (r repo) structFields(value any) map[string]any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]any)
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" || tag == "-" {
			continue
		}

		fields[tag] = v.Field(i).Interface()
	}

	return omitnilpointers.OmitNilPointers(fields)
}

func (r repo) hSetStruct(ctx context.Context, c redis.Pipeliner, key string, value any) {
	c.HSet(ctx, key, r.structFields(value))
}

// hSetIfExists writes fields into the hash at key only when the hash
// exists. Reports whether it did.
func (r repo) hSetIfExists(ctx context.Context, key string, fields map[string]any) (bool, error) {
	names := maps.Keys(fields)
	slices.Sort(names)

	args := make([]any, 0, len(fields)*2)
	for _, name := range names {
		args = append(args, name, fields[name])
	}

	res, err := hSetIfExistsScript.Run(ctx, r.rc, []string{key}, args...).Int()
	if err != nil {
		return false, err
	}

	return res == 1, nil
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
