// Package arena implements a fixed-capacity bump allocator (memory arena).
//
// # Overview
//
// An Arena owns one contiguous buffer whose size and alignment are decided up
// front. Values are carved out of it by advancing a single offset, so
// allocation is O(1) and needs no bookkeeping. Nothing is ever freed on its
// own: the whole buffer is released at once by Close. This suits callers
// that know their memory budget ahead of time, for example:
//
//   - Fixed-size scratch space for a parser or encoder
//   - Preallocated tables for hot loops
//   - Off-heap (mmap) regions that must not grow
//
// # Basic Usage
//
//	a, err := arena.New(512, 8)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
//	ref, err := arena.Alloc[[256]byte](a)
//	if arena.IsAllocError(err) {
//		// out of room: branch on it, it is an expected outcome
//	}
//
//	buf, err := ref.Get(a)
//	buf[0] = 0xff
//
//	out, _ := a.Dump()
//	fmt.Print(out)
//
// Capacity and alignment can also be fixed by a type:
//
//	type Scratch struct{}
//
//	func (Scratch) Capacity() int  { return 4096 }
//	func (Scratch) Alignment() int { return 64 }
//
//	a, err := arena.NewStatic[Scratch]()
//
// # Handles
//
// Alloc returns a Ref, not a pointer. A Ref records the arena it came from
// and its offset; Get re-derives a bounds-checked view every time it is
// called and fails once the arena is closed or when given a different arena.
//
// # Memory Layout
//
// Allocations are placed back to back in the order they are requested, with
// no gaps and no reuse. Only the buffer start is aligned; by default an
// allocation of T starts wherever the previous one ended, even if that is
// not a multiple of T's alignment. WithTypeAlignment pads each allocation to
// its type's alignment instead.
//
// Types containing Go pointers (pointers, slices, maps, strings, interfaces,
// channels, funcs) cannot be allocated: the garbage collector does not scan
// arena memory.
//
// # Thread Safety
//
// Arena is not safe for concurrent use. Use one arena per goroutine or guard
// it with your own lock.
//
// # Errors
//
// Every failure is an *Error carrying a Kind. IsLayoutError matches invalid
// capacity/alignment pairs and IsAllocError matches exhaustion and backend
// out-of-memory failures. Exhaustion leaves the arena unchanged.
package arena
