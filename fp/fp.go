// Package fp provides small generic function combinators used to build
// declarative pipelines, such as query-string construction in the swapi package.
package fp

import (
	"fmt"
	"reflect"
)

// Compose chains single-argument functions right to left:
// Compose(f, g)(x) == f(g(x)).
func Compose[T any](fns ...func(T) T) func(T) T {
	return func(value T) T {
		for i := len(fns) - 1; i >= 0; i-- {
			value = fns[i](value)
		}
		return value
	}
}

// Pipe chains single-argument functions left to right:
// Pipe(f, g)(x) == g(f(x)).
func Pipe[T any](fns ...func(T) T) func(T) T {
	return func(value T) T {
		for _, fn := range fns {
			value = fn(value)
		}
		return value
	}
}

// Apply lifts fn into a unary function value.
func Apply[T, R any](fn func(T) R) func(T) R {
	return func(value T) R {
		return fn(value)
	}
}

// Curry2 curries a two-argument function.
func Curry2[A, B, R any](fn func(A, B) R) func(A) func(B) R {
	return func(a A) func(B) R {
		return func(b B) R {
			return fn(a, b)
		}
	}
}

// Curry3 curries a three-argument function.
func Curry3[A, B, C, R any](fn func(A, B, C) R) func(A) func(B) func(C) R {
	return func(a A) func(B) func(C) R {
		return func(b B) func(C) R {
			return func(c C) R {
				return fn(a, b, c)
			}
		}
	}
}

// Curried is a function produced by Curry. Each call may supply one or more
// arguments. Once the wrapped function's arity is reached the result is
// returned; otherwise another Curried is returned.
type Curried func(args ...any) any

// Curry wraps fn so that its arguments can be supplied across several calls:
//
//	add := fp.Curry(func(a, b, c int) int { return a + b + c })
//	add(1)(2)(3) == add(1, 2)(3) == add(1, 2, 3) == 6
//
// Functions with more than one return value yield a []any of results.
// Curry panics if fn is not a function, mirroring reflect's behaviour.
func Curry(fn any) Curried {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("fp.Curry: expected func, got %T", fn))
	}
	return curryWith(v, nil)
}

func curryWith(fn reflect.Value, bound []any) Curried {
	return func(args ...any) any {
		all := make([]any, 0, len(bound)+len(args))
		all = append(all, bound...)
		all = append(all, args...)

		arity := fn.Type().NumIn()
		if fn.Type().IsVariadic() {
			arity--
		}
		if len(all) < arity {
			return curryWith(fn, all)
		}
		// Surplus arguments are dropped, as a plain call would ignore them.
		if !fn.Type().IsVariadic() {
			all = all[:arity]
		}

		in := make([]reflect.Value, len(all))
		for i, arg := range all {
			in[i] = argValue(fn.Type(), i, arg)
		}

		out := fn.Call(in)
		switch len(out) {
		case 0:
			return nil
		case 1:
			return out[0].Interface()
		default:
			results := make([]any, len(out))
			for i, o := range out {
				results[i] = o.Interface()
			}
			return results
		}
	}
}

// argValue converts arg for parameter i, substituting a typed zero value for
// untyped nil. Convertible values such as an int for an int64 are converted.
func argValue(t reflect.Type, i int, arg any) reflect.Value {
	var param reflect.Type
	if t.IsVariadic() && i >= t.NumIn()-1 {
		param = t.In(t.NumIn() - 1).Elem()
	} else {
		param = t.In(i)
	}
	if arg == nil {
		return reflect.Zero(param)
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(param) || !v.Type().ConvertibleTo(param) {
		return v
	}
	// int to string converts to a rune; leave it for Call to reject
	if param.Kind() == reflect.String && v.Kind() != reflect.String {
		return v
	}
	return v.Convert(param)
}
