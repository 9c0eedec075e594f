package utils

import (
	"runtime"
	"sync"
)

// PartitionMap splits a row range [0,MaxIndex) into ParallelDegree nearly
// equal buckets with a maximum imbalance of one row. It backs every
// row-parallel loop: each worker owns one bucket and writes only to the
// output slots inside it.
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of each bucket
}

func NewPartitionMap(parallelDegree, maxIndex int) (pm *PartitionMap) {
	if parallelDegree <= 0 {
		parallelDegree = runtime.NumCPU()
	}
	if parallelDegree > maxIndex && maxIndex > 0 {
		parallelDegree = maxIndex
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: parallelDegree,
		Partitions:     make([][2]int, parallelDegree),
	}
	for n := 0; n < parallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bucketNum int) (kMax int) {
	k1, k2 := pm.GetBucketRange(bucketNum)
	kMax = k2 - k1
	return
}

// Split1D splits one dimension into ParallelDegree pieces, spreading the
// remainder over the first buckets evenly.
func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart            = pm.MaxIndex / pm.ParallelDegree
		startAdd, endAdd int
		remainder        = pm.MaxIndex % pm.ParallelDegree
	)
	if remainder != 0 {
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// RunParallel fans the buckets out over goroutines and blocks until every
// worker has finished. The worker receives its half-open row range
// [kMin,kMax) and must only write to indices inside it.
func (pm *PartitionMap) RunParallel(worker func(kMin, kMax int)) {
	wg := sync.WaitGroup{}
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			worker(kMin, kMax)
		}(np)
	}
	wg.Wait()
}
