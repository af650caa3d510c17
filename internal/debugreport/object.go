package debugreport

import (
	"fmt"
	"strings"
)

// ObjectType identifies the kind of object a diagnostic refers to.
type ObjectType uint32

// Object types.
const (
	ObjectTypeUnknown ObjectType = iota
	ObjectTypeInstance
	ObjectTypePhysicalDevice
	ObjectTypeDevice
	ObjectTypeQueue
	ObjectTypeSemaphore
	ObjectTypeCommandBuffer
	ObjectTypeFence
	ObjectTypeDeviceMemory
	ObjectTypeBuffer
	ObjectTypeImage
	ObjectTypeEvent
	ObjectTypeQueryPool
	ObjectTypeBufferView
	ObjectTypeImageView
	ObjectTypeShaderModule
	ObjectTypePipelineCache
	ObjectTypePipelineLayout
	ObjectTypeRenderPass
	ObjectTypePipeline
	ObjectTypeDescriptorSetLayout
	ObjectTypeSampler
	ObjectTypeDescriptorPool
	ObjectTypeDescriptorSet
	ObjectTypeFramebuffer
	ObjectTypeCommandPool
	ObjectTypeSurface
	ObjectTypeSwapchain
	ObjectTypeDebugReportCallback
	ObjectTypeDebugUtilsMessenger
)

var objectTypeNames = [...]string{
	ObjectTypeUnknown:             "Unknown",
	ObjectTypeInstance:            "Instance",
	ObjectTypePhysicalDevice:      "PhysicalDevice",
	ObjectTypeDevice:              "Device",
	ObjectTypeQueue:               "Queue",
	ObjectTypeSemaphore:           "Semaphore",
	ObjectTypeCommandBuffer:       "CommandBuffer",
	ObjectTypeFence:               "Fence",
	ObjectTypeDeviceMemory:        "DeviceMemory",
	ObjectTypeBuffer:              "Buffer",
	ObjectTypeImage:               "Image",
	ObjectTypeEvent:               "Event",
	ObjectTypeQueryPool:           "QueryPool",
	ObjectTypeBufferView:          "BufferView",
	ObjectTypeImageView:           "ImageView",
	ObjectTypeShaderModule:        "ShaderModule",
	ObjectTypePipelineCache:       "PipelineCache",
	ObjectTypePipelineLayout:      "PipelineLayout",
	ObjectTypeRenderPass:          "RenderPass",
	ObjectTypePipeline:            "Pipeline",
	ObjectTypeDescriptorSetLayout: "DescriptorSetLayout",
	ObjectTypeSampler:             "Sampler",
	ObjectTypeDescriptorPool:      "DescriptorPool",
	ObjectTypeDescriptorSet:       "DescriptorSet",
	ObjectTypeFramebuffer:         "Framebuffer",
	ObjectTypeCommandPool:         "CommandPool",
	ObjectTypeSurface:             "Surface",
	ObjectTypeSwapchain:           "Swapchain",
	ObjectTypeDebugReportCallback: "DebugReportCallback",
	ObjectTypeDebugUtilsMessenger: "DebugUtilsMessenger",
}

// String returns the type name, or a numeric form for unknown values.
func (t ObjectType) String() string {
	if int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return fmt.Sprintf("ObjectType(%d)", uint32(t))
}

// ParseObjectType resolves a type name as returned by String, ignoring
// case.
func ParseObjectType(name string) (ObjectType, bool) {
	for i, n := range objectTypeNames {
		if strings.EqualFold(n, name) {
			return ObjectType(i), true
		}
	}
	return ObjectTypeUnknown, false
}

// Object is a typed handle referenced by a diagnostic. A zero Handle is the
// null object.
type Object struct {
	Type   ObjectType
	Handle uint64
}

// IsNull reports whether the object is the null handle.
func (o Object) IsNull() bool {
	return o.Handle == 0
}

// ObjectNameInfo describes one object in CallbackData. Name is empty when
// the object has no debug name.
type ObjectNameInfo struct {
	Type   ObjectType
	Handle uint64
	Name   string
}
