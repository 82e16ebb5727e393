// Package batch executes a batch of CRUD operations against a single resource.
//
// A Registry holds at most one handler per Operation (List, Fetch, Create,
// Replace, PartialUpdate, Delete). Each handler carries a success status and a
// table mapping failure categories to status codes. A Dispatcher walks a
// Request in order, checks each element's preconditions (body and id
// presence), invokes the matching handler and builds one ResponseElement per
// RequestElement, including the resource path:
//
//	list                     -> basePath
//	fetch/replace/patch/del  -> basePath/id
//	create                   -> basePath/<returned id>, or basePath on failure
//
// Only List and Fetch return a body. Missing handlers yield 405, missing body
// 400 "empty request body", missing id 400 "null id". Handler errors are mapped
// through the handler's table (honoring category ancestors) and default to 500.
package batch
