package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MarcGrol/useradminclient/lib/myerrors"
)

// Methods can not carry type parameters, so the typed verbs are package-level
// functions over a Client.

func Get[T any](c context.Context, cl *Client, path string) (T, error) {
	return call[T](c, cl, http.MethodGet, path, nil)
}

func Post[T any](c context.Context, cl *Client, path string, requestBody any) (T, error) {
	return call[T](c, cl, http.MethodPost, path, requestBody)
}

func Put[T any](c context.Context, cl *Client, path string, requestBody any) (T, error) {
	return call[T](c, cl, http.MethodPut, path, requestBody)
}

func Patch[T any](c context.Context, cl *Client, path string, requestBody any) (T, error) {
	return call[T](c, cl, http.MethodPatch, path, requestBody)
}

func Delete[T any](c context.Context, cl *Client, path string) (T, error) {
	return call[T](c, cl, http.MethodDelete, path, nil)
}

func call[T any](c context.Context, cl *Client, method string, path string, requestBody any) (T, error) {
	result := new(T)

	var payload []byte
	if requestBody != nil {
		var err error
		payload, err = json.Marshal(requestBody)
		if err != nil {
			return *result, myerrors.NewInvalidInputError(fmt.Errorf("error marshalling request body: %s", err))
		}
	}

	respPayload, err := cl.execute(c, request{
		method: method,
		path:   path,
		body:   payload,
	})
	if err != nil {
		return *result, err
	}

	if len(respPayload) == 0 {
		return *result, nil
	}

	err = json.Unmarshal(respPayload, result)
	if err != nil {
		return *result, myerrors.NewInternalError(fmt.Errorf("error parsing response of %s %s: %s", method, path, err))
	}

	return *result, nil
}
