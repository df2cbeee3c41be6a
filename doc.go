// Package routegen generates a typed TypeScript client for file-routed
// server endpoints.
//
// Endpoint files live below a scan root and carry their HTTP method in the
// file name:
//
//	server/api/users.get.ts
//	server/api/users/[id].put.ts
//
// Each file that default-exports the registration call
//
//	export default defineApexHandler<{ id: string }>(async (data) => {
//	  return { name: user.name }
//	})
//
// contributes one endpoint. The first type argument becomes the accessor's
// input contract and the handler's returned expression its output contract.
// All endpoints are aggregated into one module:
//
//	res, err := routegen.FromDir("./server/api").ToFile("./.nuxt/routegen/api.ts")
//
// Files that fail to parse are skipped and reported in Result.Diagnostics.
// Two files resolving to the same method and route abort the run with a
// *DuplicateRouteError, leaving any previous output untouched.
package routegen
