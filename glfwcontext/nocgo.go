// GLFW requires cgo; without it this package registers no platform.

package glfwcontext
