// Copyright 2024 The LUCI Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package gax

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"
)

// PageDescriptor teaches the paging decorator how a list method represents
// pagination in its request and response types.
//
// Implementations are stateless strategies, safe to share across calls.
// Tokens are opaque comparable values; ExtractNextToken returns a value equal
// to EmptyToken exactly when no further pages exist.
type PageDescriptor[Req, Resp, Elem any] interface {
	// EmptyToken returns the sentinel token: it is injected into the first
	// request and signifies end-of-list when extracted from a response.
	EmptyToken() any

	// InjectToken returns a request continuing the list call at token.
	InjectToken(req Req, token any) Req

	// InjectPageSize returns a request asking for pages of the given size.
	InjectPageSize(req Req, pageSize int) Req

	// ExtractPageSize returns the page size the request asks for.
	ExtractPageSize(req Req) int

	// ExtractNextToken returns the continuation token of the response.
	ExtractNextToken(resp Resp) any

	// ExtractResources returns the response's elements in declared order.
	ExtractResources(resp Resp) []Elem
}

// ValidationError reports a synchronous misuse of the paging API, such as
// expanding to a fixed-size collection smaller than the page size.
type ValidationError struct {
	reason string
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.reason
}

// PagedCallable presents a page-oriented list method as a single logical
// list.
type PagedCallable[Req, Resp, Elem any] struct {
	callable UnaryCallable[Req, Resp]
	desc     PageDescriptor[Req, Resp, Elem]
}

// PageStreaming wraps a list-returning callable with the paging decorator
// described by desc.
//
// This is a free function rather than a UnaryCallable method because the
// element type is a new type parameter.
func PageStreaming[Req, Resp, Elem any](c UnaryCallable[Req, Resp], desc PageDescriptor[Req, Resp, Elem]) PagedCallable[Req, Resp, Elem] {
	return PagedCallable[Req, Resp, Elem]{callable: c, desc: desc}
}

// Call fetches the first page synchronously and returns the response handle
// spanning all pages.
//
// Subsequent pages are fetched on demand with the same stack and CallContext,
// reusing ctx.
func (pc PagedCallable[Req, Resp, Elem]) Call(ctx context.Context, req Req) (*PagedListResponse[Req, Resp, Elem], error) {
	pf := &pageFetcher[Req, Resp, Elem]{ctx: ctx, callable: pc.callable, desc: pc.desc}
	first, err := pf.fetch(req)
	if err != nil {
		return nil, err
	}
	return &PagedListResponse[Req, Resp, Elem]{first: first}, nil
}

// FutureCall is the asynchronous form of Call.
func (pc PagedCallable[Req, Resp, Elem]) FutureCall(ctx context.Context, req Req) *Future[*PagedListResponse[Req, Resp, Elem]] {
	f := NewFuture[*PagedListResponse[Req, Resp, Elem]]()
	go func() {
		resp, err := pc.Call(ctx, req)
		if err != nil {
			f.SetError(err)
			return
		}
		f.SetResult(resp)
	}()
	return f
}

// pageFetcher issues the page RPCs. Pages hold a reference to it rather than
// to each other; the next page is computed on demand.
type pageFetcher[Req, Resp, Elem any] struct {
	ctx      context.Context
	callable UnaryCallable[Req, Resp]
	desc     PageDescriptor[Req, Resp, Elem]
}

func (pf *pageFetcher[Req, Resp, Elem]) fetch(req Req) (*Page[Req, Resp, Elem], error) {
	resp, err := pf.callable.Call(pf.ctx, req)
	if err != nil {
		return nil, err
	}
	return &Page[Req, Resp, Elem]{
		fetcher:   pf,
		req:       req,
		resp:      resp,
		elements:  pf.desc.ExtractResources(resp),
		nextToken: pf.desc.ExtractNextToken(resp),
	}, nil
}

// Page is a snapshot of one fetched page.
type Page[Req, Resp, Elem any] struct {
	fetcher   *pageFetcher[Req, Resp, Elem]
	req       Req
	resp      Resp
	elements  []Elem
	nextToken any
}

// Elements returns the page's elements in the response's declared order.
func (p *Page[Req, Resp, Elem]) Elements() []Elem {
	return p.elements
}

// Request returns the request that produced this page.
func (p *Page[Req, Resp, Elem]) Request() Req {
	return p.req
}

// Response returns the raw response this page was extracted from.
func (p *Page[Req, Resp, Elem]) Response() Resp {
	return p.resp
}

// HasNextPage reports whether a further page exists.
//
// A page whose element list is empty is terminal regardless of its token.
func (p *Page[Req, Resp, Elem]) HasNextPage() bool {
	return len(p.elements) > 0 && p.nextToken != p.fetcher.desc.EmptyToken()
}

// NextPage synchronously fetches the next page, rebuilding the request with
// this page's continuation token. It returns (nil, nil) when no further page
// exists.
func (p *Page[Req, Resp, Elem]) NextPage() (*Page[Req, Resp, Elem], error) {
	if !p.HasNextPage() {
		return nil, nil
	}
	return p.fetcher.fetch(p.fetcher.desc.InjectToken(p.req, p.nextToken))
}

// PagedListResponse is the root handle returned by a paging call.
type PagedListResponse[Req, Resp, Elem any] struct {
	first *Page[Req, Resp, Elem]
}

// Page returns the first page.
func (r *PagedListResponse[Req, Resp, Elem]) Page() *Page[Req, Resp, Elem] {
	return r.first
}

// Elements returns a lazy iterator over all elements across all pages, in
// page order. The next page is fetched only once the current page's elements
// are exhausted.
func (r *PagedListResponse[Req, Resp, Elem]) Elements() *ElementIterator[Req, Resp, Elem] {
	return &ElementIterator[Req, Resp, Elem]{page: r.first}
}

// ExpandToFixedSizeCollection regroups the element stream into collections of
// exactly size elements (only the final collection may be shorter).
//
// It returns a *ValidationError when size is smaller than the request's page
// size, or when the upstream page boundaries do not align with size (the
// stream is never re-chunked mid-page).
func (r *PagedListResponse[Req, Resp, Elem]) ExpandToFixedSizeCollection(size int) (*FixedSizeCollection[Req, Resp, Elem], error) {
	return newFixedSizeCollection(r.first, size)
}

// ElementIterator iterates elements lazily across pages.
type ElementIterator[Req, Resp, Elem any] struct {
	page *Page[Req, Resp, Elem]
	idx  int
}

// Next returns the next element. It returns iterator.Done once the stream is
// exhausted.
func (it *ElementIterator[Req, Resp, Elem]) Next() (Elem, error) {
	var zero Elem
	for {
		if it.page == nil {
			return zero, iterator.Done
		}
		if it.idx < len(it.page.elements) {
			el := it.page.elements[it.idx]
			it.idx++
			return el, nil
		}
		if !it.page.HasNextPage() {
			it.page = nil
			return zero, iterator.Done
		}
		next, err := it.page.NextPage()
		if err != nil {
			return zero, err
		}
		it.page = next
		it.idx = 0
	}
}

// FixedSizeCollection reshapes the page-delimited stream into fixed-size
// chunks.
type FixedSizeCollection[Req, Resp, Elem any] struct {
	elements []Elem
	size     int
	last     *Page[Req, Resp, Elem]
}

func newFixedSizeCollection[Req, Resp, Elem any](start *Page[Req, Resp, Elem], size int) (*FixedSizeCollection[Req, Resp, Elem], error) {
	if pageSize := start.fetcher.desc.ExtractPageSize(start.req); size < pageSize {
		return nil, validationErrorf("collection size %d is less than the page size %d", size, pageSize)
	}

	elements := append([]Elem(nil), start.elements...)
	if len(elements) > size {
		return nil, validationErrorf("collection of size %d overrun by a page boundary at %d elements", size, len(elements))
	}
	page := start
	for len(elements) < size && page.HasNextPage() {
		next, err := page.NextPage()
		if err != nil {
			return nil, err
		}
		if len(elements)+len(next.elements) > size {
			return nil, validationErrorf("collection of size %d overrun by a page boundary at %d elements", size, len(elements)+len(next.elements))
		}
		elements = append(elements, next.elements...)
		page = next
	}
	return &FixedSizeCollection[Req, Resp, Elem]{elements: elements, size: size, last: page}, nil
}

// Elements returns the collection's elements.
func (c *FixedSizeCollection[Req, Resp, Elem]) Elements() []Elem {
	return c.elements
}

// CollectionSize returns the configured chunk size.
func (c *FixedSizeCollection[Req, Resp, Elem]) CollectionSize() int {
	return c.size
}

// HasNextCollection reports whether further elements exist upstream.
func (c *FixedSizeCollection[Req, Resp, Elem]) HasNextCollection() bool {
	return c.last.HasNextPage()
}

// NextCollection fetches the next fixed-size collection, continuing after the
// last page realized by this one. It returns (nil, nil) when the stream is
// exhausted.
func (c *FixedSizeCollection[Req, Resp, Elem]) NextCollection() (*FixedSizeCollection[Req, Resp, Elem], error) {
	if !c.HasNextCollection() {
		return nil, nil
	}
	next, err := c.last.NextPage()
	if err != nil {
		return nil, err
	}
	return newFixedSizeCollection(next, c.size)
}
