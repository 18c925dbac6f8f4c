package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Примерный расход памяти одним воркером сверх буферов кадров (ffmpeg, шрифты)
const workerOverhead = 256 << 20

// framesPerWorker — сколько кадров одновременно живёт у одного воркера
const framesPerWorker = 4

// RecommendedWorkers оценивает число параллельных сцен по ядрам и свободной
// памяти. Если gopsutil недоступен, используется runtime.NumCPU.
func RecommendedWorkers(width, height int) int {
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return max(1, cores)
	}

	perWorker := uint64(width*height*4*framesPerWorker) + workerOverhead
	byMemory := int(vm.Available / perWorker)

	return max(1, min(cores, byMemory))
}

// ResourceSummary возвращает строку для отчета о запуске
func ResourceSummary() string {
	cores, _ := cpu.Counts(true)
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("CPU: %d", cores)
	}
	return fmt.Sprintf("CPU: %d | RAM свободно: %.1f GB из %.1f GB",
		cores, float64(vm.Available)/(1<<30), float64(vm.Total)/(1<<30))
}
